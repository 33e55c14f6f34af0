package domain

import (
	"fmt"
	"math"
	"time"
)

// Bounds applied to incoming readings.
const (
	MinTemperature = -100.0
	MaxTemperature = 100.0
	MaxCO2         = 1_000_000.0 // ppm

	MaxFutureSkew = 5 * time.Minute
	MaxReadingAge = 365 * 24 * time.Hour
)

// ValidateReading checks shape and ranges of r relative to now.
func ValidateReading(r Reading, now time.Time) error {
	if r.SensorID <= 0 {
		return fmt.Errorf("%w: invalid sensor id", ErrInvalidReading)
	}
	if math.IsNaN(r.CO2) || math.IsInf(r.CO2, 0) || r.CO2 < 0 {
		return fmt.Errorf("%w: invalid CO2 value", ErrInvalidReading)
	}
	if r.CO2 > MaxCO2 {
		return fmt.Errorf("%w: CO2 value out of range", ErrInvalidReading)
	}
	if math.IsNaN(r.Temperature) || math.IsInf(r.Temperature, 0) ||
		r.Temperature < MinTemperature || r.Temperature > MaxTemperature {
		return fmt.Errorf("%w: temperature out of range [%.0f, %.0f]", ErrInvalidReading, MinTemperature, MaxTemperature)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidReading)
	}
	if r.Timestamp.After(now.Add(MaxFutureSkew)) {
		return fmt.Errorf("%w: timestamp is in the future", ErrInvalidReading)
	}
	if r.Timestamp.Before(now.Add(-MaxReadingAge)) {
		return fmt.Errorf("%w: timestamp is too old", ErrInvalidReading)
	}
	return nil
}
