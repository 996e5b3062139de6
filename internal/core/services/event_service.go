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

// EventService reads and appends to the mission audit trail. StatusChange
// events are written only by the state machine; this service covers the
// explicit agent actions (photos, notes) and the trail queries.
type EventService struct {
	eventRepo   repositories.MissionEventRepository
	missionRepo repositories.MissionRepository
	storage     Storage
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo repositories.MissionEventRepository,
	missionRepo repositories.MissionRepository,
	storage Storage,
) *EventService {
	return &EventService{
		eventRepo:   eventRepo,
		missionRepo: missionRepo,
		storage:     storage,
	}
}

// EventWithURL is a trail entry with its photo reference resolved to a
// fetchable URL (empty when the entry has no photo or the reference is gone)
type EventWithURL struct {
	*models.MissionEvent
	PhotoURL string `json:"photo_url,omitempty"`
}

// RecordPhoto appends a PhotoUploaded event carrying an opaque storage
// reference and an optional caption
func (s *EventService) RecordPhoto(ctx context.Context, actor domain.Actor, missionID uint, storageRef string, note *string) (*models.MissionEvent, error) {
	if storageRef == "" {
		return nil, domain.ErrValidation
	}
	if err := s.authorizeWrite(ctx, actor, missionID); err != nil {
		return nil, err
	}

	event := &models.MissionEvent{
		MissionID: missionID,
		AgentID:   actor.UserID,
		EventType: string(domain.EventPhotoUploaded),
		PhotoRef:  &storageRef,
		Note:      note,
		Timestamp: time.Now(),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// RecordNote appends a free-text Note event
func (s *EventService) RecordNote(ctx context.Context, actor domain.Actor, missionID uint, note string) (*models.MissionEvent, error) {
	if note == "" {
		return nil, domain.ErrValidation
	}
	if err := s.authorizeWrite(ctx, actor, missionID); err != nil {
		return nil, err
	}

	event := &models.MissionEvent{
		MissionID: missionID,
		AgentID:   actor.UserID,
		EventType: string(domain.EventNote),
		Note:      &note,
		Timestamp: time.Now(),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// ListByMission returns the audit trail ascending by timestamp, photo
// references resolved through the storage collaborator
func (s *EventService) ListByMission(ctx context.Context, actor domain.Actor, missionID uint) ([]*EventWithURL, error) {
	mission, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMissionNotFound
		}
		return nil, err
	}
	if err := s.authorizeMission(actor, mission); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.ListByMission(ctx, missionID)
	if err != nil {
		return nil, err
	}

	result := make([]*EventWithURL, 0, len(events))
	for _, event := range events {
		entry := &EventWithURL{MissionEvent: event}
		if event.PhotoRef != nil && s.storage != nil {
			url, err := s.storage.ResolveURL(ctx, *event.PhotoRef)
			if err == nil {
				entry.PhotoURL = url
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

// GenerateUploadURL asks the storage collaborator for a fresh upload target
func (s *EventService) GenerateUploadURL(ctx context.Context) (string, error) {
	return s.storage.GenerateUploadURL(ctx)
}

func (s *EventService) authorizeWrite(ctx context.Context, actor domain.Actor, missionID uint) error {
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
	if actor.Role == domain.RoleAgent && mission.AgentID != nil && *mission.AgentID == actor.UserID {
		return nil
	}
	return domain.ErrForbidden
}

func (s *EventService) authorizeMission(actor domain.Actor, mission *models.Mission) error {
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
