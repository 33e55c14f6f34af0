package domain

import "errors"

var (
	ErrInvalidReading      = errors.New("invalid reading")
	ErrInvalidRange        = errors.New("invalid range")
	ErrInvalidInput        = errors.New("invalid input")
	ErrSensorNotRegistered = errors.New("sensor is not registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrForbidden           = errors.New("not authorized to access this sensor")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrNotFound            = errors.New("not found")

	// Server-side failures. Their detail is logged, never returned to callers.
	ErrStore  = errors.New("store failure")
	ErrAnchor = errors.New("anchor failure")
)

// Kind is the caller-facing class of an error.
type Kind int

const (
	KindInternal Kind = iota
	KindClient
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindStore
	KindAnchor
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStore:
		return "store"
	case KindAnchor:
		return "anchor"
	default:
		return "internal"
	}
}

// KindOf classifies err. Anything unrecognised is internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInvalidReading), errors.Is(err, ErrInvalidRange), errors.Is(err, ErrSensorNotRegistered),
		errors.Is(err, ErrInvalidInput):
		return KindClient
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidCredentials):
		return KindAuth
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUsernameTaken):
		return KindConflict
	case errors.Is(err, ErrAnchor):
		return KindAnchor
	case errors.Is(err, ErrStore):
		return KindStore
	default:
		return KindInternal
	}
}

// IsClientFacing reports whether err text may be shown to the caller.
func (k Kind) IsClientFacing() bool {
	switch k {
	case KindClient, KindAuth, KindForbidden, KindNotFound, KindConflict:
		return true
	}
	return false
}
