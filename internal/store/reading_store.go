package store

import (
	"context"
	"time"

	"pollution-tracker/internal/domain"

	"gorm.io/gorm"
)

type ReadingStore struct{ db *gorm.DB }

func (s *Store) Readings() *ReadingStore { return &ReadingStore{db: s.DB} }

// Create appends r. Identical readings are stored as distinct rows.
func (rs *ReadingStore) Create(ctx context.Context, r *domain.Reading) error {
	r.Timestamp = r.Timestamp.UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.AnchorStatus == "" {
		r.AnchorStatus = domain.AnchorUnanchored
	}
	return translate(rs.db.WithContext(ctx).Omit("Sensor").Create(r).Error)
}

func (rs *ReadingStore) Get(ctx context.Context, id domain.ReadingID) (*domain.Reading, error) {
	var r domain.Reading
	if err := rs.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

// ForOwner returns readings of sensorID at or after cutoff, oldest first,
// restricted to sensors owned by owner.
func (rs *ReadingStore) ForOwner(ctx context.Context, sensorID domain.SensorID, owner string, cutoff time.Time) ([]domain.Reading, error) {
	readings := []domain.Reading{}
	err := rs.db.WithContext(ctx).
		Model(&domain.Reading{}).
		Select("readings.*").
		Joins("JOIN sensors ON sensors.id = readings.sensor_id").
		Where("readings.sensor_id = ? AND sensors.owner = ? AND readings.timestamp >= ?", sensorID, owner, cutoff.UTC()).
		Order("readings.timestamp asc, readings.id asc").
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (rs *ReadingStore) MarkAnchored(ctx context.Context, id domain.ReadingID, signature string) error {
	return rs.db.WithContext(ctx).
		Model(&domain.Reading{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"anchor_status":    domain.AnchorAnchored,
			"anchor_signature": signature,
			"anchor_attempts":  gorm.Expr("anchor_attempts + 1"),
			"anchored_at":      time.Now().UTC(),
		}).Error
}

func (rs *ReadingStore) MarkAnchorFailed(ctx context.Context, id domain.ReadingID) error {
	return rs.db.WithContext(ctx).
		Model(&domain.Reading{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"anchor_status":   domain.AnchorFailed,
			"anchor_attempts": gorm.Expr("anchor_attempts + 1"),
		}).Error
}

func (rs *ReadingStore) MarkConfirmed(ctx context.Context, id domain.ReadingID) error {
	return rs.db.WithContext(ctx).
		Model(&domain.Reading{}).
		Where("id = ? AND anchor_status = ?", id, domain.AnchorAnchored).
		Update("anchor_status", domain.AnchorConfirmed).Error
}

// ExpireAnchor moves an anchored reading whose transaction never landed back
// to anchor_failed so PendingAnchor picks it up again. Attempts are not
// bumped; the submit that produced the signature already counted.
func (rs *ReadingStore) ExpireAnchor(ctx context.Context, id domain.ReadingID) error {
	return rs.db.WithContext(ctx).
		Model(&domain.Reading{}).
		Where("id = ? AND anchor_status = ?", id, domain.AnchorAnchored).
		Updates(map[string]any{
			"anchor_status":    domain.AnchorFailed,
			"anchor_signature": nil,
			"anchored_at":      nil,
		}).Error
}

// PendingAnchor lists readings still waiting for a ledger anchor that were
// created before olderThan and have fewer than maxAttempts tries.
func (rs *ReadingStore) PendingAnchor(ctx context.Context, olderThan time.Time, maxAttempts, limit int) ([]domain.Reading, error) {
	var out []domain.Reading
	tx := rs.db.WithContext(ctx).
		Where("anchor_status IN ? AND created_at < ? AND anchor_attempts < ?",
			[]string{string(domain.AnchorUnanchored), string(domain.AnchorFailed)}, olderThan.UTC(), maxAttempts).
		Order("id asc")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// AwaitingConfirmation lists anchored readings not yet seen on the ledger,
// starting after afterID. Callers page through by passing the last ID seen.
func (rs *ReadingStore) AwaitingConfirmation(ctx context.Context, afterID domain.ReadingID, limit int) ([]domain.Reading, error) {
	var out []domain.Reading
	tx := rs.db.WithContext(ctx).
		Where("anchor_status = ? AND anchor_signature IS NOT NULL AND id > ?", domain.AnchorAnchored, afterID).
		Order("id asc")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (rs *ReadingStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := rs.db.WithContext(ctx).Model(&domain.Reading{}).Count(&n).Error
	return n, err
}
