package impl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/fingerprint"
)

type stubAnchorer struct {
	mu sync.Mutex

	submitErr error
	verifyErr error
	onLedger  map[string]bool // signature -> memo found

	submits  []domain.Reading
	verifies []string
	ctxErrs  []error
}

func newStubAnchorer() *stubAnchorer {
	return &stubAnchorer{onLedger: map[string]bool{}}
}

func (s *stubAnchorer) Submit(ctx context.Context, r domain.Reading) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submits = append(s.submits, r)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	if s.submitErr != nil {
		return "", s.submitErr
	}
	sig := fmt.Sprintf("sig-%d-%d", r.ID, len(s.submits))
	s.onLedger[sig] = true
	return sig, nil
}

func (s *stubAnchorer) Verify(_ context.Context, _ domain.Reading, signature string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifies = append(s.verifies, signature)
	if s.verifyErr != nil {
		return false, s.verifyErr
	}
	return s.onLedger[signature], nil
}

func (s *stubAnchorer) Memo(r domain.Reading) string {
	return fingerprint.Memo("pollution", r.Fingerprint())
}

// countingSensors wraps a sensor store and can be told to fail.
type countingSensors struct {
	sensorStore
	err        error
	ownedCalls int
}

func (c *countingSensors) Exists(ctx context.Context, id domain.SensorID) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	return c.sensorStore.Exists(ctx, id)
}

func (c *countingSensors) OwnedBy(ctx context.Context, id domain.SensorID, owner string) (bool, error) {
	c.ownedCalls++
	if c.err != nil {
		return false, c.err
	}
	return c.sensorStore.OwnedBy(ctx, id, owner)
}

// spyReadings records which reading queries ran.
type spyReadings struct {
	readingStore
	forOwnerCalls int
	createErr     error
}

func (s *spyReadings) ForOwner(ctx context.Context, sensorID domain.SensorID, owner string, cutoff time.Time) ([]domain.Reading, error) {
	s.forOwnerCalls++
	return s.readingStore.ForOwner(ctx, sensorID, owner, cutoff)
}

func (s *spyReadings) Create(ctx context.Context, r *domain.Reading) error {
	if s.createErr != nil {
		return s.createErr
	}
	return s.readingStore.Create(ctx, r)
}

var errDBDown = errors.New("connection refused")
