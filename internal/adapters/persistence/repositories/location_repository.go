package repositories

import (
	"context"
	"errors"

	"greetops/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// locationLogRepository implements LocationLogRepository interface
type locationLogRepository struct {
	db *gorm.DB
}

// NewLocationLogRepository creates a new location log repository
func NewLocationLogRepository(db *gorm.DB) LocationLogRepository {
	return &locationLogRepository{db: db}
}

// Create appends one immutable position sample
func (r *locationLogRepository) Create(ctx context.Context, log *models.LocationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// Latest returns the most recent sample for a mission, or (nil, nil) when
// the ledger is empty for that mission
func (r *locationLogRepository) Latest(ctx context.Context, missionID uint) (*models.LocationLog, error) {
	var log models.LocationLog
	err := r.db.WithContext(ctx).
		Where("mission_id = ?", missionID).
		Order("timestamp DESC, id DESC").
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

// History lists a mission's samples ascending by timestamp,
// insertion order as tiebreak
func (r *locationLogRepository) History(ctx context.Context, missionID uint) ([]*models.LocationLog, error) {
	var logs []*models.LocationLog
	err := r.db.WithContext(ctx).
		Where("mission_id = ?", missionID).
		Order("timestamp ASC, id ASC").
		Find(&logs).Error
	return logs, err
}
