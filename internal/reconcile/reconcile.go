// Package reconcile drives stored readings to a confirmed ledger anchor.
//
// Ingestion anchors inline but never retries. The reconciler picks up rows
// that were left unanchored or anchor_failed, re-submits them, and promotes
// anchored rows to confirmed once their memo shows up on the ledger. An
// anchored row whose transaction is still unknown to the node after the
// confirm window is treated as dropped and goes back to anchor_failed.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"pollution-tracker/internal/domain"
	"pollution-tracker/internal/observability/metrics"
)

type Store interface {
	PendingAnchor(ctx context.Context, olderThan time.Time, maxAttempts, limit int) ([]domain.Reading, error)
	AwaitingConfirmation(ctx context.Context, afterID domain.ReadingID, limit int) ([]domain.Reading, error)
	MarkAnchored(ctx context.Context, id domain.ReadingID, signature string) error
	MarkAnchorFailed(ctx context.Context, id domain.ReadingID) error
	MarkConfirmed(ctx context.Context, id domain.ReadingID) error
	ExpireAnchor(ctx context.Context, id domain.ReadingID) error
}

type Anchorer interface {
	Submit(ctx context.Context, r domain.Reading) (string, error)
	Verify(ctx context.Context, r domain.Reading, signature string) (bool, error)
}

type Config struct {
	Interval      time.Duration
	Grace         time.Duration // minimum row age before a re-submit
	ConfirmWindow time.Duration // how long an anchored row may stay unseen
	Batch         int
	MaxAttempts   int
	LedgerTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.Grace <= 0 {
		c.Grace = time.Minute
	}
	if c.ConfirmWindow <= 0 {
		c.ConfirmWindow = 5 * time.Minute
	}
	if c.Batch <= 0 {
		c.Batch = 50
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 10
	}
	if c.LedgerTimeout <= 0 {
		c.LedgerTimeout = 30 * time.Second
	}
	return c
}

// Report counts what one pass did.
type Report struct {
	Resubmitted int
	Failed      int
	Confirmed   int
	Pending     int // anchored but not yet visible on the ledger
	Expired     int // anchored rows sent back for a re-submit
}

type Reconciler struct {
	store  Store
	anchor Anchorer
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	// confirmation scan resumes after this ID on the next pass
	cursor domain.ReadingID
}

func New(store Store, anchor Anchorer, cfg Config, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:  store,
		anchor: anchor,
		cfg:    cfg.withDefaults(),
		logger: logger.With("component", "reconciler"),
		now:    time.Now,
	}
}

// Run calls RunOnce every interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.cfg.Interval.String())
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			rep, err := r.RunOnce(ctx)
			if err != nil {
				r.logger.Error("reconcile pass failed", "error", err)
				continue
			}
			if rep != (Report{}) {
				r.logger.Info("reconcile pass",
					"resubmitted", rep.Resubmitted,
					"failed", rep.Failed,
					"confirmed", rep.Confirmed,
					"pending", rep.Pending,
					"expired", rep.Expired)
			}
		}
	}
}

// RunOnce re-submits pending rows and then checks one batch of anchored
// ones, continuing where the previous pass stopped. Per-row ledger errors
// are counted and logged; only store errors abort the pass. RunOnce is not
// safe for concurrent use.
func (r *Reconciler) RunOnce(ctx context.Context) (Report, error) {
	var rep Report

	pending, err := r.store.PendingAnchor(ctx, r.now().Add(-r.cfg.Grace), r.cfg.MaxAttempts, r.cfg.Batch)
	if err != nil {
		return rep, err
	}
	for _, reading := range pending {
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		if r.resubmit(ctx, reading) {
			rep.Resubmitted++
		} else {
			rep.Failed++
		}
	}

	anchored, err := r.store.AwaitingConfirmation(ctx, r.cursor, r.cfg.Batch)
	if err != nil {
		return rep, err
	}
	if len(anchored) < r.cfg.Batch {
		r.cursor = 0
	} else {
		r.cursor = anchored[len(anchored)-1].ID
	}
	for _, reading := range anchored {
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		switch r.confirm(ctx, reading) {
		case confirmed:
			rep.Confirmed++
		case expired:
			rep.Expired++
		default:
			rep.Pending++
		}
	}
	return rep, nil
}

type outcome int

const (
	unseen outcome = iota
	confirmed
	expired
)

func (r *Reconciler) resubmit(ctx context.Context, reading domain.Reading) bool {
	result := "success"
	defer func() {
		metrics.ReconcileActionsTotal.WithLabelValues("resubmit", result).Inc()
	}()

	sctx, cancel := context.WithTimeout(ctx, r.cfg.LedgerTimeout)
	defer cancel()

	sig, err := r.anchor.Submit(sctx, reading)
	if err != nil {
		result = "failure"
		r.logger.Warn("re-submit failed", "reading_id", reading.ID, "attempts", reading.AnchorAttempts+1, "error", err)
		if err := r.store.MarkAnchorFailed(ctx, reading.ID); err != nil {
			r.logger.Error("could not mark reading anchor_failed", "reading_id", reading.ID, "error", err)
		}
		return false
	}
	if err := r.store.MarkAnchored(ctx, reading.ID, sig); err != nil {
		result = "failure"
		r.logger.Error("could not record anchor signature", "reading_id", reading.ID, "signature", sig, "error", err)
		return false
	}
	r.logger.Info("reading re-anchored", "reading_id", reading.ID, "signature", sig)
	return true
}

func (r *Reconciler) confirm(ctx context.Context, reading domain.Reading) outcome {
	result := "confirmed"
	defer func() {
		metrics.ReconcileActionsTotal.WithLabelValues("confirm", result).Inc()
	}()

	if reading.AnchorSignature == nil {
		result = "skipped"
		return unseen
	}

	vctx, cancel := context.WithTimeout(ctx, r.cfg.LedgerTimeout)
	defer cancel()

	ok, err := r.anchor.Verify(vctx, reading, *reading.AnchorSignature)
	if err != nil {
		result = "failure"
		r.logger.Warn("anchor verification failed", "reading_id", reading.ID, "error", err)
		return unseen
	}
	if !ok {
		if !r.overdue(reading) {
			result = "pending"
			return unseen
		}
		result = "expired"
		if err := r.store.ExpireAnchor(ctx, reading.ID); err != nil {
			result = "failure"
			r.logger.Error("could not expire anchor", "reading_id", reading.ID, "error", err)
			return unseen
		}
		r.logger.Warn("anchor never landed, queued for re-submit",
			"reading_id", reading.ID, "signature", *reading.AnchorSignature, "attempts", reading.AnchorAttempts)
		return expired
	}
	if err := r.store.MarkConfirmed(ctx, reading.ID); err != nil {
		result = "failure"
		r.logger.Error("could not mark reading confirmed", "reading_id", reading.ID, "error", err)
		return unseen
	}
	return confirmed
}

// overdue reports whether reading has been anchored for longer than the
// confirm window. Rows without anchored_at fall back to created_at.
func (r *Reconciler) overdue(reading domain.Reading) bool {
	since := reading.CreatedAt
	if reading.AnchoredAt != nil {
		since = *reading.AnchoredAt
	}
	return r.now().Sub(since) > r.cfg.ConfirmWindow
}
