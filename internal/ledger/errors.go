package ledger

import (
	"errors"
	"fmt"

	"pollution-tracker/internal/domain"
)

// Stage is how far a submission got before it stopped.
type Stage string

const (
	StageBuilt     Stage = "built"
	StageSigned    Stage = "signed"
	StageSubmitted Stage = "submitted"
)

var (
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	ErrInvalidKeypair      = errors.New("ledger: invalid keypair")
	ErrInvalidSignature    = errors.New("ledger: invalid transaction signature")
)

// AnchorError reports a failed submission and the stage it failed in. It
// matches domain.ErrAnchor under errors.Is.
type AnchorError struct {
	Stage Stage
	Err   error
}

func (e *AnchorError) Error() string {
	return fmt.Sprintf("ledger: %s: %v", e.Stage, e.Err)
}

func (e *AnchorError) Unwrap() []error { return []error{domain.ErrAnchor, e.Err} }
