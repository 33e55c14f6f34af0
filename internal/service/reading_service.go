package service

import (
	"context"

	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/dto"
)

type IngestService interface {
	Ingest(ctx context.Context, r dto.ReadingRequest) (*dto.IngestResult, error)
}

type ReadingService interface {
	Sensors(ctx context.Context, subject string) ([]domain.Sensor, error)
	Readings(ctx context.Context, subject string, sensorID domain.SensorID, rng domain.TimeRange) ([]domain.Reading, error)
	Proof(ctx context.Context, subject string, sensorID domain.SensorID, readingID domain.ReadingID) (*dto.ProofResponse, error)
}

// Anchorer submits and checks ledger anchors. *ledger.Client implements it.
type Anchorer interface {
	Submit(ctx context.Context, r domain.Reading) (string, error)
	Verify(ctx context.Context, r domain.Reading, signature string) (bool, error)
	Memo(r domain.Reading) string
}
