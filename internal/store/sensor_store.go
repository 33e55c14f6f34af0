package store

import (
	"context"

	"pollution-tracker/internal/domain"

	"gorm.io/gorm"
)

type SensorStore struct{ db *gorm.DB }

func (s *Store) Sensors() *SensorStore { return &SensorStore{db: s.DB} }

// Create registers a sensor. Sensors are provisioned out-of-band, not through
// the public API.
func (ss *SensorStore) Create(ctx context.Context, sensor *domain.Sensor) error {
	return translate(ss.db.WithContext(ctx).Omit("OwnerUser").Create(sensor).Error)
}

func (ss *SensorStore) Exists(ctx context.Context, id domain.SensorID) (bool, error) {
	var n int64
	err := ss.db.WithContext(ctx).Model(&domain.Sensor{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (ss *SensorStore) OwnedBy(ctx context.Context, id domain.SensorID, owner string) (bool, error) {
	var n int64
	err := ss.db.WithContext(ctx).Model(&domain.Sensor{}).
		Where("id = ? AND owner = ?", id, owner).
		Count(&n).Error
	return n > 0, err
}

func (ss *SensorStore) ListByOwner(ctx context.Context, owner string) ([]domain.Sensor, error) {
	sensors := []domain.Sensor{}
	if err := ss.db.WithContext(ctx).Where("owner = ?", owner).Order("id asc").Find(&sensors).Error; err != nil {
		return nil, err
	}
	return sensors, nil
}
