package repositories

import (
	"context"

	"greetops/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// missionEventRepository implements MissionEventRepository interface
type missionEventRepository struct {
	db *gorm.DB
}

// NewMissionEventRepository creates a new mission event repository
func NewMissionEventRepository(db *gorm.DB) MissionEventRepository {
	return &missionEventRepository{db: db}
}

// Create appends one immutable audit record
func (r *missionEventRepository) Create(ctx context.Context, event *models.MissionEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListByMission lists a mission's events ascending by timestamp,
// insertion order as tiebreak
func (r *missionEventRepository) ListByMission(ctx context.Context, missionID uint) ([]*models.MissionEvent, error) {
	var events []*models.MissionEvent
	err := r.db.WithContext(ctx).
		Where("mission_id = ?", missionID).
		Order("timestamp ASC, id ASC").
		Find(&events).Error
	return events, err
}
