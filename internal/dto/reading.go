package dto

import (
	"time"

	"pollution-tracker/internal/domain"
)

// ReadingRequest is what a device posts to the ingest endpoint. Timestamps
// are RFC 3339.
type ReadingRequest struct {
	SensorID    int32     `json:"sensor_id"`
	Timestamp   time.Time `json:"timestamp"`
	CO2         float64   `json:"co2"`
	Temperature float64   `json:"temperature"`
}

func (r ReadingRequest) ToDomain() domain.Reading {
	return domain.Reading{
		SensorID:    domain.SensorID(r.SensorID),
		Timestamp:   r.Timestamp,
		CO2:         r.CO2,
		Temperature: r.Temperature,
	}
}

type IngestResult struct {
	ReadingID   domain.ReadingID `json:"reading_id"`
	Fingerprint string           `json:"fingerprint"`
	Signature   string           `json:"signature"`
}

// ProofResponse ties a stored reading to its ledger anchor. Verified is the
// live ledger answer at request time.
type ProofResponse struct {
	Reading     domain.Reading      `json:"reading"`
	Fingerprint string              `json:"fingerprint"`
	Memo        string              `json:"memo"`
	Signature   *string             `json:"signature,omitempty"`
	Status      domain.AnchorStatus `json:"status"`
	Verified    bool                `json:"verified"`
}
