package repositories

import (
	"context"
	"time"

	"greetops/internal/adapters/persistence/models"
	"greetops/internal/core/domain"

	"gorm.io/gorm"
)

// missionRepository implements MissionRepository interface
type missionRepository struct {
	db *gorm.DB
}

// NewMissionRepository creates a new mission repository
func NewMissionRepository(db *gorm.DB) MissionRepository {
	return &missionRepository{db: db}
}

// Create creates a new mission
func (r *missionRepository) Create(ctx context.Context, mission *models.Mission) error {
	return r.db.WithContext(ctx).Create(mission).Error
}

// GetByID gets a mission by ID with relations
func (r *missionRepository) GetByID(ctx context.Context, id uint) (*models.Mission, error) {
	var mission models.Mission
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Agent").
		Preload("Attachments").
		First(&mission, id).Error
	if err != nil {
		return nil, err
	}
	return &mission, nil
}

// ListByClient lists a client's missions, newest first, with pagination
func (r *missionRepository) ListByClient(ctx context.Context, clientID uint, offset, limit int) ([]*models.Mission, int64, error) {
	var missions []*models.Mission
	var total int64

	if err := r.db.WithContext(ctx).
		Model(&models.Mission{}).
		Where("client_id = ?", clientID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Agent").
		Where("client_id = ?", clientID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&missions).Error
	if err != nil {
		return nil, 0, err
	}

	return missions, total, nil
}

// ListByAgent lists missions assigned to an agent, newest first
func (r *missionRepository) ListByAgent(ctx context.Context, agentID uint) ([]*models.Mission, error) {
	var missions []*models.Mission
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("agent_id = ?", agentID).
		Order("created_at DESC, id DESC").
		Find(&missions).Error
	return missions, err
}

// ListActiveByClient lists a client's missions currently in the field
// (neither Scheduled nor terminal)
func (r *missionRepository) ListActiveByClient(ctx context.Context, clientID uint) ([]*models.Mission, error) {
	var missions []*models.Mission
	err := r.db.WithContext(ctx).
		Preload("Agent").
		Where("client_id = ?", clientID).
		Where("status NOT IN ?", []string{
			domain.StatusScheduled.String(),
			domain.StatusComplete.String(),
			domain.StatusCancelled.String(),
		}).
		Find(&missions).Error
	return missions, err
}

// UpdateStatusWithEvent patches mission status and appends the StatusChange
// event in a single transaction. A reader never observes one without the
// other.
func (r *missionRepository) UpdateStatusWithEvent(ctx context.Context, missionID uint, status string, event *models.MissionEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Mission{}).
			Where("id = ?", missionID).
			Updates(map[string]interface{}{
				"status":     status,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		return tx.Create(event).Error
	})
}

// AssignAgent patches mission agent_id and updated_at
func (r *missionRepository) AssignAgent(ctx context.Context, missionID, agentID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Mission{}).
		Where("id = ?", missionID).
		Updates(map[string]interface{}{
			"agent_id":   agentID,
			"updated_at": time.Now(),
		}).Error
}

// AddAttachment appends a document reference to a mission
func (r *missionRepository) AddAttachment(ctx context.Context, att *models.MissionAttachment) error {
	return r.db.WithContext(ctx).Create(att).Error
}

// ListAttachments lists a mission's attachments in upload order
func (r *missionRepository) ListAttachments(ctx context.Context, missionID uint) ([]*models.MissionAttachment, error) {
	var atts []*models.MissionAttachment
	err := r.db.WithContext(ctx).
		Where("mission_id = ?", missionID).
		Order("uploaded_at ASC, id ASC").
		Find(&atts).Error
	return atts, err
}

// CountByStatus counts missions in a given status
func (r *missionRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Mission{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
