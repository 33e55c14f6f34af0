package domain

import (
	"time"

	"pollution-tracker/internal/fingerprint"
)

// Reading is an append-only sensor sample. Only the anchor columns change
// after insert.
type Reading struct {
	ID          ReadingID `gorm:"primaryKey;autoIncrement" db:"id" json:"id"`
	SensorID    SensorID  `gorm:"not null;index:idx_readings_sensor_ts,priority:1" db:"sensor_id" json:"sensor_id"`
	Timestamp   time.Time `gorm:"not null;index:idx_readings_sensor_ts,priority:2" db:"timestamp" json:"timestamp"`
	CO2         float64   `gorm:"column:co2_level;not null" db:"co2_level" json:"co2"`
	Temperature float64   `gorm:"not null" db:"temperature" json:"temperature"`

	AnchorStatus    AnchorStatus `gorm:"type:text;not null;default:unanchored;index:idx_readings_anchor_status" db:"anchor_status" json:"anchor_status"`
	AnchorSignature *string      `gorm:"type:text" db:"anchor_signature" json:"anchor_signature,omitempty"`
	AnchorAttempts  int          `gorm:"not null;default:0" db:"anchor_attempts" json:"-"`
	AnchoredAt      *time.Time   `db:"anchored_at" json:"-"`
	CreatedAt       time.Time    `gorm:"not null" db:"created_at" json:"-"`

	// reading.sensor_id -> sensors.id
	Sensor *Sensor `gorm:"foreignKey:SensorID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Reading) TableName() string { return "readings" }

// Fields returns the semantic content that gets fingerprinted.
func (r Reading) Fields() fingerprint.Fields {
	return fingerprint.Fields{
		SensorID:    int64(r.SensorID),
		Timestamp:   r.Timestamp,
		CO2:         r.CO2,
		Temperature: r.Temperature,
	}
}

// Fingerprint is the hex digest anchored on the ledger for this reading.
func (r Reading) Fingerprint() string {
	return fingerprint.Of(r.Fields())
}
