package services

import (
	"context"
	"errors"
	"log"
	"time"

	"greetops/internal/adapters/persistence/models"
	"greetops/internal/adapters/persistence/repositories"
	"greetops/internal/core/domain"

	"gorm.io/gorm"
)

// MissionService owns the mission lifecycle: creation, the status state
// machine, and agent assignment. Every status mutation appends to the audit
// trail inside the same transaction.
type MissionService struct {
	missionRepo repositories.MissionRepository
	userRepo    repositories.UserRepository
	pricing     *PricingService
	sink        EventSink
}

// NewMissionService creates a new mission service
func NewMissionService(
	missionRepo repositories.MissionRepository,
	userRepo repositories.UserRepository,
	pricing *PricingService,
	sink EventSink,
) *MissionService {
	return &MissionService{
		missionRepo: missionRepo,
		userRepo:    userRepo,
		pricing:     pricing,
		sink:        sink,
	}
}

// CreateMissionInput represents mission creation input
type CreateMissionInput struct {
	PassengerName  string  `json:"passenger_name" validate:"required"`
	PassengerPhone *string `json:"passenger_phone"`
	PassengerEmail *string `json:"passenger_email" validate:"omitempty,email"`
	PassengerCount *int    `json:"passenger_count" validate:"omitempty,min=1"`

	GroupLeaderName  *string `json:"group_leader_name"`
	GroupLeaderPhone *string `json:"group_leader_phone"`
	GroupLeaderEmail *string `json:"group_leader_email" validate:"omitempty,email"`

	FlightNumber *string `json:"flight_number"`
	TrainNumber  *string `json:"train_number"`
	ShipName     *string `json:"ship_name"`

	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	PickupLocation  string    `json:"pickup_location" validate:"required"`
	DropoffLocation *string   `json:"dropoff_location"`

	ServiceType  string `json:"service_type" validate:"required"`
	LocationType string `json:"location_type" validate:"required"`

	Notes *string `json:"notes"`

	// When true, the pricing calculator is invoked and the quote stored on
	// the mission. DistanceKm feeds per-km pricing for transfers.
	RequestQuote bool     `json:"request_quote"`
	DistanceKm   *float64 `json:"distance_km" validate:"omitempty,min=0"`
}

// Create creates a mission in the initial Scheduled status. No agent is
// required at creation.
func (s *MissionService) Create(ctx context.Context, actor domain.Actor, clientID uint, input *CreateMissionInput) (*models.Mission, error) {
	// 1. Authorize: clients create for themselves, admins for anyone
	if !actor.IsAdmin() && actor.UserID != clientID {
		return nil, domain.ErrForbidden
	}

	// 2. Required fields
	if input.PassengerName == "" || input.PickupLocation == "" || input.ScheduledAt.IsZero() {
		return nil, domain.ErrValidation
	}
	if !domain.ServiceType(input.ServiceType).IsValid() || !domain.LocationType(input.LocationType).IsValid() {
		return nil, domain.ErrValidation
	}

	mission := &models.Mission{
		ClientID:         clientID,
		PassengerName:    input.PassengerName,
		PassengerPhone:   input.PassengerPhone,
		PassengerEmail:   input.PassengerEmail,
		PassengerCount:   input.PassengerCount,
		GroupLeaderName:  input.GroupLeaderName,
		GroupLeaderPhone: input.GroupLeaderPhone,
		GroupLeaderEmail: input.GroupLeaderEmail,
		FlightNumber:     input.FlightNumber,
		TrainNumber:      input.TrainNumber,
		ShipName:         input.ShipName,
		ScheduledAt:      input.ScheduledAt,
		PickupLocation:   input.PickupLocation,
		DropoffLocation:  input.DropoffLocation,
		ServiceType:      input.ServiceType,
		LocationType:     input.LocationType,
		Status:           domain.StatusScheduled.String(),
		Notes:            input.Notes,
	}

	// 3. Optional quote at creation time. "No rate card" is not an error:
	// the mission is created unpriced.
	if input.RequestQuote && s.pricing != nil {
		quote, err := s.pricing.CalculatePrice(ctx, &QuoteInput{
			ServiceType:    input.ServiceType,
			LocationType:   input.LocationType,
			ScheduledAt:    input.ScheduledAt,
			PassengerCount: input.PassengerCount,
			DistanceKm:     input.DistanceKm,
			ClientID:       &clientID,
		})
		if err != nil {
			return nil, err
		}
		if quote.Price != nil {
			mission.QuotedPrice = quote.Price
			currency := quote.Currency
			mission.Currency = &currency
		}
	}

	if err := s.missionRepo.Create(ctx, mission); err != nil {
		return nil, err
	}

	log.Printf("✅ Mission created: #%d (%s, %s) for client %d", mission.ID, mission.ServiceType, mission.LocationType, clientID)
	return mission, nil
}

// Get returns a mission the actor is allowed to see
func (s *MissionService) Get(ctx context.Context, actor domain.Actor, missionID uint) (*models.Mission, error) {
	mission, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMissionNotFound
		}
		return nil, err
	}
	if err := s.authorize(actor, mission); err != nil {
		return nil, err
	}
	return mission, nil
}

// ListByClient lists a client's missions, newest first
func (s *MissionService) ListByClient(ctx context.Context, actor domain.Actor, clientID uint, offset, limit int) ([]*models.Mission, int64, error) {
	if !actor.IsAdmin() && actor.UserID != clientID {
		return nil, 0, domain.ErrForbidden
	}
	return s.missionRepo.ListByClient(ctx, clientID, offset, limit)
}

// ListByAgent lists missions assigned to an agent
func (s *MissionService) ListByAgent(ctx context.Context, actor domain.Actor, agentID uint) ([]*models.Mission, error) {
	if !actor.IsAdmin() && actor.UserID != agentID {
		return nil, domain.ErrForbidden
	}
	return s.missionRepo.ListByAgent(ctx, agentID)
}

// Advance moves a mission to the state immediately following its current
// status in the fixed ordering, and appends exactly one StatusChange event
// in the same transaction. Terminal states reject advancement.
func (s *MissionService) Advance(ctx context.Context, actor domain.Actor, missionID uint) (*models.Mission, error) {
	// 1. Load and authorize
	mission, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMissionNotFound
		}
		return nil, err
	}
	if err := s.authorize(actor, mission); err != nil {
		return nil, err
	}

	// 2. Compute next status along the ordering
	current := domain.MissionStatus(mission.Status)
	next, ok := domain.NextStatus(current, domain.LocationType(mission.LocationType))
	if !ok {
		return nil, domain.ErrInvalidTransition
	}

	// 3. Patch + append atomically
	if err := s.transition(ctx, mission, current, next, actor.UserID); err != nil {
		return nil, err
	}
	return mission, nil
}

// SetStatus sets an explicit target status without ordinal validation. This
// is the administrative override path; Cancelled is reachable from any
// non-terminal state through it. Unknown status strings are rejected.
func (s *MissionService) SetStatus(ctx context.Context, actor domain.Actor, missionID uint, target string) (*models.Mission, error) {
	status := domain.MissionStatus(target)
	if !status.IsValid() {
		return nil, domain.ErrUnknownStatus
	}

	mission, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMissionNotFound
		}
		return nil, err
	}
	if err := s.authorize(actor, mission); err != nil {
		return nil, err
	}

	current := domain.MissionStatus(mission.Status)
	if current.IsTerminal() {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.transition(ctx, mission, current, status, actor.UserID); err != nil {
		return nil, err
	}
	return mission, nil
}

// transition runs the atomic patch-plus-append and notifies the sink after
// commit. The mutated mission is updated in place.
func (s *MissionService) transition(ctx context.Context, mission *models.Mission, from, to domain.MissionStatus, actorID uint) error {
	prev := from.String()
	next := to.String()
	event := &models.MissionEvent{
		MissionID:      mission.ID,
		AgentID:        actorID,
		EventType:      string(domain.EventStatusChange),
		PreviousStatus: &prev,
		NewStatus:      &next,
		Timestamp:      time.Now(),
	}

	if err := s.missionRepo.UpdateStatusWithEvent(ctx, mission.ID, next, event); err != nil {
		return err
	}

	mission.Status = next
	mission.UpdatedAt = time.Now()

	log.Printf("✅ Mission #%d: %s → %s (by user %d)", mission.ID, prev, next, actorID)

	if s.sink != nil {
		s.sink.StatusChanged(mission, prev, next, actorID)
	}
	return nil
}

// AssignAgent binds or rebinds an agent to a mission. Idempotent; callable
// at any status. The target user must exist and hold the Agent role.
func (s *MissionService) AssignAgent(ctx context.Context, actor domain.Actor, missionID, agentID uint) error {
	mission, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrMissionNotFound
		}
		return err
	}
	// Assignment is a dispatcher action: the owning client or an admin
	if !actor.IsAdmin() && actor.UserID != mission.ClientID {
		return domain.ErrForbidden
	}

	agent, err := s.userRepo.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrAgentNotFound
		}
		return err
	}
	if domain.Role(agent.Role) != domain.RoleAgent {
		return domain.ErrNotAnAgent
	}

	if mission.AgentID != nil && *mission.AgentID == agentID {
		return nil
	}

	if err := s.missionRepo.AssignAgent(ctx, missionID, agentID); err != nil {
		return err
	}

	log.Printf("✅ Mission #%d assigned to agent %d", missionID, agentID)
	return nil
}

// AddAttachment appends a document reference to a mission
func (s *MissionService) AddAttachment(ctx context.Context, actor domain.Actor, missionID uint, storageRef, fileName, fileType string) (*models.MissionAttachment, error) {
	mission, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMissionNotFound
		}
		return nil, err
	}
	if err := s.authorize(actor, mission); err != nil {
		return nil, err
	}
	if storageRef == "" || fileName == "" {
		return nil, domain.ErrValidation
	}

	att := &models.MissionAttachment{
		MissionID:  missionID,
		StorageRef: storageRef,
		FileName:   fileName,
		FileType:   fileType,
		UploadedAt: time.Now(),
	}
	if err := s.missionRepo.AddAttachment(ctx, att); err != nil {
		return nil, err
	}
	return att, nil
}

// ListAttachments lists a mission's attachments in upload order
func (s *MissionService) ListAttachments(ctx context.Context, actor domain.Actor, missionID uint) ([]*models.MissionAttachment, error) {
	mission, err := s.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMissionNotFound
		}
		return nil, err
	}
	if err := s.authorize(actor, mission); err != nil {
		return nil, err
	}
	return s.missionRepo.ListAttachments(ctx, missionID)
}

// authorize verifies the actor may touch the mission: the owning client,
// the assigned agent, or an admin.
func (s *MissionService) authorize(actor domain.Actor, mission *models.Mission) error {
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
