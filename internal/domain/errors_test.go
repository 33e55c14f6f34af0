package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{err: fmt.Errorf("%w: bad", ErrInvalidReading), want: KindClient},
		{err: ErrSensorNotRegistered, want: KindClient},
		{err: fmt.Errorf("%w: username required", ErrInvalidInput), want: KindClient},
		{err: ErrInvalidRange, want: KindClient},
		{err: ErrNotFound, want: KindNotFound},
		{err: ErrUnauthenticated, want: KindAuth},
		{err: ErrInvalidCredentials, want: KindAuth},
		{err: ErrForbidden, want: KindForbidden},
		{err: ErrUsernameTaken, want: KindConflict},
		{err: fmt.Errorf("%w: connection refused", ErrStore), want: KindStore},
		{err: fmt.Errorf("%w: rpc down", ErrAnchor), want: KindAnchor},
		{err: errors.New("boom"), want: KindInternal},
	}
	for _, tc := range tests {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v): expected %s, got %s", tc.err, tc.want, got)
		}
	}
}

func TestServerKindsAreNotClientFacing(t *testing.T) {
	for _, k := range []Kind{KindStore, KindAnchor, KindInternal} {
		if k.IsClientFacing() {
			t.Fatalf("%s must not be client facing", k)
		}
	}
}
