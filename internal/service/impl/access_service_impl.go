package impl

import (
	"context"
	"fmt"

	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/store"
)

type sensorStore interface {
	Exists(ctx context.Context, id domain.SensorID) (bool, error)
	OwnedBy(ctx context.Context, id domain.SensorID, owner string) (bool, error)
	ListByOwner(ctx context.Context, owner string) ([]domain.Sensor, error)
}

// AccessServiceImpl answers registration and ownership questions. It fails
// closed: a store error is never read as "allowed".
type AccessServiceImpl struct {
	Sensors sensorStore
}

func NewAccessServiceImpl(st *store.Store) *AccessServiceImpl {
	return &AccessServiceImpl{Sensors: st.Sensors()}
}

func (a *AccessServiceImpl) SensorRegistered(ctx context.Context, sensorID domain.SensorID) (bool, error) {
	ok, err := a.Sensors.Exists(ctx, sensorID)
	if err != nil {
		return false, fmt.Errorf("%w: sensor lookup: %v", domain.ErrStore, err)
	}
	return ok, nil
}

func (a *AccessServiceImpl) Owns(ctx context.Context, subject string, sensorID domain.SensorID) (bool, error) {
	if subject == "" {
		return false, nil
	}
	ok, err := a.Sensors.OwnedBy(ctx, sensorID, subject)
	if err != nil {
		return false, fmt.Errorf("%w: ownership lookup: %v", domain.ErrStore, err)
	}
	return ok, nil
}

func (a *AccessServiceImpl) RequireOwner(ctx context.Context, subject string, sensorID domain.SensorID) error {
	ok, err := a.Owns(ctx, subject, sensorID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}
