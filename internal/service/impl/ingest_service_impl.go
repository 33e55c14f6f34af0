package impl

import (
	"context"
	"fmt"
	"time"

	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/dto"
	"pollution-tracker/internal/observability/logging"
	"pollution-tracker/internal/observability/metrics"
	"pollution-tracker/internal/service"
	"pollution-tracker/internal/store"
)

// IngestServiceImpl validates, persists and anchors device readings.
//
// A reading is stored before it is anchored and is never rolled back when
// anchoring fails; it is marked anchor_failed and left for the reconciler.
type IngestServiceImpl struct {
	Access        service.AccessService
	ReadingStore  readingStore
	Anchor        service.Anchorer
	LedgerTimeout time.Duration

	now func() time.Time
}

func NewIngestServiceImpl(st *store.Store, access service.AccessService, anchor service.Anchorer, ledgerTimeout time.Duration) *IngestServiceImpl {
	if ledgerTimeout <= 0 {
		ledgerTimeout = 30 * time.Second
	}
	return &IngestServiceImpl{
		Access:        access,
		ReadingStore:  st.Readings(),
		Anchor:        anchor,
		LedgerTimeout: ledgerTimeout,
		now:           time.Now,
	}
}

func (s *IngestServiceImpl) Ingest(ctx context.Context, req dto.ReadingRequest) (*dto.IngestResult, error) {
	result := "accepted"
	defer func() {
		metrics.ReadingsIngestedTotal.WithLabelValues(result).Inc()
	}()
	log := logging.FromContext(ctx)

	r := req.ToDomain()
	if err := domain.ValidateReading(r, s.now()); err != nil {
		result = "rejected"
		return nil, err
	}

	registered, err := s.Access.SensorRegistered(ctx, r.SensorID)
	if err != nil {
		result = "store_error"
		return nil, err
	}
	if !registered {
		result = "rejected"
		return nil, domain.ErrSensorNotRegistered
	}

	if err := s.ReadingStore.Create(ctx, &r); err != nil {
		result = "store_error"
		return nil, fmt.Errorf("%w: insert reading: %v", domain.ErrStore, err)
	}

	// the row is durable now; finish the anchor even if the caller goes away
	detached := context.WithoutCancel(ctx)
	actx, cancel := context.WithTimeout(detached, s.LedgerTimeout)
	defer cancel()

	fp := r.Fingerprint()
	sig, err := s.Anchor.Submit(actx, r)
	if err != nil {
		result = "anchor_error"
		if markErr := s.ReadingStore.MarkAnchorFailed(detached, r.ID); markErr != nil {
			log.Error("could not mark reading anchor_failed", "reading_id", r.ID, "error", markErr)
		}
		log.Error("anchor submission failed", "reading_id", r.ID, "sensor_id", r.SensorID, "fingerprint", fp, "error", err)
		return nil, fmt.Errorf("%w: reading %d: %v", domain.ErrAnchor, r.ID, err)
	}

	if err := s.ReadingStore.MarkAnchored(detached, r.ID, sig); err != nil {
		// the memo is on its way; the reconciler re-anchors the row later
		log.Error("could not record anchor signature", "reading_id", r.ID, "signature", sig, "error", err)
	}

	log.Info("reading ingested", "reading_id", r.ID, "sensor_id", r.SensorID, "fingerprint", fp, "signature", sig)
	return &dto.IngestResult{
		ReadingID:   r.ID,
		Fingerprint: fp,
		Signature:   sig,
	}, nil
}
