package impl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/dto"
	"pollution-tracker/internal/observability/logging"
	"pollution-tracker/internal/service"
	"pollution-tracker/internal/store"
)

type readingStore interface {
	Create(ctx context.Context, r *domain.Reading) error
	Get(ctx context.Context, id domain.ReadingID) (*domain.Reading, error)
	ForOwner(ctx context.Context, sensorID domain.SensorID, owner string, cutoff time.Time) ([]domain.Reading, error)
	MarkAnchored(ctx context.Context, id domain.ReadingID, signature string) error
	MarkAnchorFailed(ctx context.Context, id domain.ReadingID) error
}

// ReadingServiceImpl serves the owner-gated read paths.
type ReadingServiceImpl struct {
	Access       service.AccessService
	SensorStore  sensorStore
	ReadingStore readingStore
	Anchor       service.Anchorer

	now func() time.Time
}

func NewReadingServiceImpl(st *store.Store, access service.AccessService, anchor service.Anchorer) *ReadingServiceImpl {
	return &ReadingServiceImpl{
		Access:       access,
		SensorStore:  st.Sensors(),
		ReadingStore: st.Readings(),
		Anchor:       anchor,
		now:          time.Now,
	}
}

func (s *ReadingServiceImpl) Sensors(ctx context.Context, subject string) ([]domain.Sensor, error) {
	sensors, err := s.SensorStore.ListByOwner(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("%w: list sensors: %v", domain.ErrStore, err)
	}
	return sensors, nil
}

// Readings returns the subject's readings for sensorID inside rng. The
// ownership check runs before any reading is queried.
func (s *ReadingServiceImpl) Readings(ctx context.Context, subject string, sensorID domain.SensorID, rng domain.TimeRange) ([]domain.Reading, error) {
	if err := s.Access.RequireOwner(ctx, subject, sensorID); err != nil {
		return nil, err
	}
	readings, err := s.ReadingStore.ForOwner(ctx, sensorID, subject, rng.Cutoff(s.now()))
	if err != nil {
		return nil, fmt.Errorf("%w: list readings: %v", domain.ErrStore, err)
	}
	return readings, nil
}

// Proof reports the anchor state of one reading. When a signature is on
// record the ledger is asked whether the memo is really there; a ledger
// error is logged and reported as unverified.
func (s *ReadingServiceImpl) Proof(ctx context.Context, subject string, sensorID domain.SensorID, readingID domain.ReadingID) (*dto.ProofResponse, error) {
	if err := s.Access.RequireOwner(ctx, subject, sensorID); err != nil {
		return nil, err
	}

	r, err := s.ReadingStore.Get(ctx, readingID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reading %d", domain.ErrNotFound, readingID)
		}
		return nil, fmt.Errorf("%w: load reading: %v", domain.ErrStore, err)
	}
	if r.SensorID != sensorID {
		return nil, fmt.Errorf("%w: reading %d", domain.ErrNotFound, readingID)
	}

	out := &dto.ProofResponse{
		Reading:     *r,
		Fingerprint: r.Fingerprint(),
		Memo:        s.Anchor.Memo(*r),
		Signature:   r.AnchorSignature,
		Status:      r.AnchorStatus,
	}
	if r.AnchorSignature != nil {
		ok, err := s.Anchor.Verify(ctx, *r, *r.AnchorSignature)
		if err != nil {
			logging.FromContext(ctx).Warn("proof verification failed", "reading_id", r.ID, "error", err)
		}
		out.Verified = ok
	}
	return out, nil
}
