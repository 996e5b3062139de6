package repositories

import (
	"context"

	"greetops/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ListByRole(ctx context.Context, role string) ([]*models.User, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// MissionRepository defines mission repository interface.
// UpdateStatusWithEvent is the atomicity boundary of the state machine: the
// status patch and the audit event append commit or roll back together.
type MissionRepository interface {
	Create(ctx context.Context, mission *models.Mission) error
	GetByID(ctx context.Context, id uint) (*models.Mission, error)
	ListByClient(ctx context.Context, clientID uint, offset, limit int) ([]*models.Mission, int64, error)
	ListByAgent(ctx context.Context, agentID uint) ([]*models.Mission, error)
	ListActiveByClient(ctx context.Context, clientID uint) ([]*models.Mission, error)
	UpdateStatusWithEvent(ctx context.Context, missionID uint, status string, event *models.MissionEvent) error
	AssignAgent(ctx context.Context, missionID, agentID uint) error
	AddAttachment(ctx context.Context, att *models.MissionAttachment) error
	ListAttachments(ctx context.Context, missionID uint) ([]*models.MissionAttachment, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// MissionEventRepository defines the append-only audit trail interface
type MissionEventRepository interface {
	Create(ctx context.Context, event *models.MissionEvent) error
	ListByMission(ctx context.Context, missionID uint) ([]*models.MissionEvent, error)
}

// LocationLogRepository defines the append-only position ledger interface
type LocationLogRepository interface {
	Create(ctx context.Context, log *models.LocationLog) error
	Latest(ctx context.Context, missionID uint) (*models.LocationLog, error)
	History(ctx context.Context, missionID uint) ([]*models.LocationLog, error)
}

// RateCardRepository defines rate card repository interface.
// FindActive returns (nil, nil) when no matching active rule exists.
type RateCardRepository interface {
	Create(ctx context.Context, card *models.RateCard) error
	GetByID(ctx context.Context, id uint) (*models.RateCard, error)
	Update(ctx context.Context, card *models.RateCard) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*models.RateCard, error)
	ListDefaults(ctx context.Context) ([]*models.RateCard, error)
	ListByClient(ctx context.Context, clientID uint) ([]*models.RateCard, error)
	FindActive(ctx context.Context, clientID *uint, serviceType, locationType string) (*models.RateCard, error)
	Count(ctx context.Context) (int64, error)
}
