package services

import (
	"context"
	"errors"
	"time"

	"greetops/internal/adapters/persistence/models"
	"greetops/internal/adapters/persistence/repositories"
	"greetops/internal/core/domain"

	"gorm.io/gorm"
)

// LocationService is the append-only position ledger. Writes are gated on
// the mission being in an active status; timestamps are assigned server-side
// so a device clock cannot falsify the ordering.
type LocationService struct {
	locationRepo repositories.LocationLogRepository
	missionRepo  repositories.MissionRepository
	sink         EventSink
}

// NewLocationService creates a new location service
func NewLocationService(
	locationRepo repositories.LocationLogRepository,
	missionRepo repositories.MissionRepository,
	sink EventSink,
) *LocationService {
	return &LocationService{
		locationRepo: locationRepo,
		missionRepo:  missionRepo,
		sink:         sink,
	}
}

// RecordInput represents a position sample from the agent device
type RecordInput struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

// Record appends one sample to the ledger. Only the assigned agent may
// write, and only while the mission is in an active status.
func (s *LocationService) Record(ctx context.Context, actor domain.Actor, missionID uint, input *RecordInput) (*models.LocationLog, error) {
	mission, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMissionNotFound
		}
		return nil, err
	}

	if !actor.IsAdmin() {
		if actor.Role != domain.RoleAgent || mission.AgentID == nil || *mission.AgentID != actor.UserID {
			return nil, domain.ErrForbidden
		}
	}

	if !domain.MissionStatus(mission.Status).IsActivePhase() {
		return nil, domain.ErrInvalidState
	}

	sample := &models.LocationLog{
		MissionID: missionID,
		AgentID:   actor.UserID,
		Lat:       input.Lat,
		Lng:       input.Lng,
		Timestamp: time.Now(),
	}
	if err := s.locationRepo.Create(ctx, sample); err != nil {
		return nil, err
	}

	if s.sink != nil {
		s.sink.LocationDispatched(mission, sample)
	}
	return sample, nil
}

// Latest returns the most recent sample for a mission, nil when none exists
func (s *LocationService) Latest(ctx context.Context, actor domain.Actor, missionID uint) (*models.LocationLog, error) {
	if err := s.authorizeRead(ctx, actor, missionID); err != nil {
		return nil, err
	}
	return s.locationRepo.Latest(ctx, missionID)
}

// History returns a mission's full ordered position history
func (s *LocationService) History(ctx context.Context, actor domain.Actor, missionID uint) ([]*models.LocationLog, error) {
	if err := s.authorizeRead(ctx, actor, missionID); err != nil {
		return nil, err
	}
	return s.locationRepo.History(ctx, missionID)
}

// ActiveMission pairs a mission in the field with its last known position
type ActiveMission struct {
	Mission      *models.Mission     `json:"mission"`
	LastLocation *models.LocationLog `json:"last_location"`
}

// ActiveMissions returns a client's missions currently in the field, each
// with its latest position (nil when the agent has not reported yet).
func (s *LocationService) ActiveMissions(ctx context.Context, actor domain.Actor, clientID uint) ([]*ActiveMission, error) {
	if !actor.IsAdmin() && actor.UserID != clientID {
		return nil, domain.ErrForbidden
	}

	missions, err := s.missionRepo.ListActiveByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	result := make([]*ActiveMission, 0, len(missions))
	for _, mission := range missions {
		last, err := s.locationRepo.Latest(ctx, mission.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &ActiveMission{Mission: mission, LastLocation: last})
	}
	return result, nil
}

func (s *LocationService) authorizeRead(ctx context.Context, actor domain.Actor, missionID uint) error {
	mission, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrMissionNotFound
		}
		return err
	}
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role == domain.RoleClient && mission.ClientID == actor.UserID {
		return nil
	}
	if actor.Role == domain.RoleAgent && mission.AgentID != nil && *mission.AgentID == actor.UserID {
		return nil
	}
	return domain.ErrForbidden
}
