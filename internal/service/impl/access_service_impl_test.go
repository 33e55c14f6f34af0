package impl

import (
	"context"
	"errors"
	"testing"

	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/store/storetest"
)

func TestAccessOwnership(t *testing.T) {
	st, _ := storetest.Open(t)
	storetest.SeedSensor(t, st, 1, "alice")
	ctx := context.Background()
	access := NewAccessServiceImpl(st)

	ok, err := access.SensorRegistered(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("sensor 1 should be registered: ok=%v err=%v", ok, err)
	}
	ok, err = access.SensorRegistered(ctx, 2)
	if err != nil || ok {
		t.Fatalf("sensor 2 should not be registered: ok=%v err=%v", ok, err)
	}

	if err := access.RequireOwner(ctx, "alice", 1); err != nil {
		t.Fatalf("alice owns sensor 1: %v", err)
	}
	if err := access.RequireOwner(ctx, "bob", 1); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for bob, got %v", err)
	}
	if err := access.RequireOwner(ctx, "", 1); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for empty subject, got %v", err)
	}
}

func TestAccessFailsClosed(t *testing.T) {
	st, _ := storetest.Open(t)
	storetest.SeedSensor(t, st, 1, "alice")
	access := &AccessServiceImpl{Sensors: &countingSensors{sensorStore: st.Sensors(), err: errDBDown}}

	err := access.RequireOwner(context.Background(), "alice", 1)
	if !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
	if domain.KindOf(err) != domain.KindStore {
		t.Fatalf("expected store kind, got %s", domain.KindOf(err))
	}

	if _, err := access.SensorRegistered(context.Background(), 1); !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}
