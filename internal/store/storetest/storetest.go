// Package storetest opens throwaway in-memory sqlite stores for tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/store"
	"pollution-tracker/pkg/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns a migrated store private to t.
func Open(t testing.TB) (*store.Store, *gorm.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	gdb, err := gorm.Open(sqlite.Open(dsn), db.GormConfig(db.Config{}))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	st := store.New(gdb)
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st, gdb
}

// SeedSensor creates owner (if needed) and a sensor owned by them.
func SeedSensor(t testing.TB, st *store.Store, id domain.SensorID, owner string) {
	t.Helper()
	ctx := context.Background()

	if _, err := st.Users().GetByUsername(ctx, owner); err != nil {
		if err := st.Users().Create(ctx, &domain.User{Username: owner, PasswordHash: "x"}); err != nil {
			t.Fatalf("seed user %s: %v", owner, err)
		}
	}
	sensor := &domain.Sensor{ID: id, Name: fmt.Sprintf("sensor-%d", id), Location: "lab", Owner: owner}
	if err := st.Sensors().Create(ctx, sensor); err != nil {
		t.Fatalf("seed sensor %d: %v", id, err)
	}
}
