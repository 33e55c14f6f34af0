package service

import (
	"context"

	"pollution-tracker/internal/domain"
)

type AccessService interface {
	SensorRegistered(ctx context.Context, sensorID domain.SensorID) (bool, error)
	Owns(ctx context.Context, subject string, sensorID domain.SensorID) (bool, error)
	RequireOwner(ctx context.Context, subject string, sensorID domain.SensorID) error
}
