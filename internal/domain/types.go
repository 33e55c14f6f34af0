package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type SensorID = int32
type ReadingID = int64

// AnchorStatus tracks a reading through ledger anchoring.
type AnchorStatus string

const (
	AnchorUnanchored AnchorStatus = "unanchored"
	AnchorAnchored   AnchorStatus = "anchored"
	AnchorConfirmed  AnchorStatus = "confirmed"
	AnchorFailed     AnchorStatus = "anchor_failed"
)

// RoleUser is the only role issued today.
const RoleUser = "user"
