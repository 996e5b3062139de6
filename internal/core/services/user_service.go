package services

import (
	"context"
	"errors"
	"log"

	"greetops/internal/adapters/persistence/models"
	"greetops/internal/adapters/persistence/repositories"
	"greetops/internal/core/domain"

	"gorm.io/gorm"
)

// UserService handles user profile and directory operations
type UserService struct {
	userRepo    repositories.UserRepository
	missionRepo repositories.MissionRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, missionRepo repositories.MissionRepository) *UserService {
	return &UserService{
		userRepo:    userRepo,
		missionRepo: missionRepo,
	}
}

// ClientOnboardingInput is the client onboarding payload
type ClientOnboardingInput struct {
	CompanyName string `json:"company_name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
}

// AgentOnboardingInput is the agent onboarding payload
type AgentOnboardingInput struct {
	Phone string `json:"phone" validate:"required"`
}

// CompleteClientOnboarding records the client's company profile and marks
// onboarding done
func (s *UserService) CompleteClientOnboarding(ctx context.Context, userID uint, input *ClientOnboardingInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Role != string(domain.RoleClient) {
		return nil, domain.ErrForbidden
	}

	user.CompanyName = &input.CompanyName
	user.Phone = &input.Phone
	user.OnboardingComplete = true

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ Client onboarding complete: user #%d (%s)", user.ID, input.CompanyName)
	return user.ToResponse(), nil
}

// CompleteAgentOnboarding records the agent's contact details and marks
// onboarding done. Agents stay out of the available pool until this runs.
func (s *UserService) CompleteAgentOnboarding(ctx context.Context, userID uint, input *AgentOnboardingInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Role != string(domain.RoleAgent) {
		return nil, domain.ErrForbidden
	}

	user.Phone = &input.Phone
	user.OnboardingComplete = true

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ Agent onboarding complete: user #%d", user.ID)
	return user.ToResponse(), nil
}

// Get returns a single user profile
func (s *UserService) Get(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// List returns all users paginated (admin only)
func (s *UserService) List(ctx context.Context, actor domain.Actor, offset, limit int) ([]*models.UserResponse, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}

	users, total, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return toResponses(users), total, nil
}

// ListAgents returns all agents (admin or client, for assignment pickers)
func (s *UserService) ListAgents(ctx context.Context, actor domain.Actor) ([]*models.UserResponse, error) {
	if actor.Role == domain.RoleAgent {
		return nil, domain.ErrForbidden
	}

	agents, err := s.userRepo.ListByRole(ctx, string(domain.RoleAgent))
	if err != nil {
		return nil, err
	}
	return toResponses(agents), nil
}

// ListAvailableAgents returns onboarded agents with no mission in an active
// phase
func (s *UserService) ListAvailableAgents(ctx context.Context, actor domain.Actor) ([]*models.UserResponse, error) {
	agents, err := s.ListAgents(ctx, actor)
	if err != nil {
		return nil, err
	}

	available := make([]*models.UserResponse, 0, len(agents))
	for _, agent := range agents {
		if !agent.OnboardingComplete {
			continue
		}
		missions, err := s.missionRepo.ListByAgent(ctx, agent.ID)
		if err != nil {
			return nil, err
		}
		busy := false
		for _, m := range missions {
			if domain.MissionStatus(m.Status).IsActivePhase() {
				busy = true
				break
			}
		}
		if !busy {
			available = append(available, agent)
		}
	}
	return available, nil
}

// ListPendingAgents returns agents that have not completed onboarding
// (admin only)
func (s *UserService) ListPendingAgents(ctx context.Context, actor domain.Actor) ([]*models.UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	agents, err := s.userRepo.ListByRole(ctx, string(domain.RoleAgent))
	if err != nil {
		return nil, err
	}

	pending := make([]*models.UserResponse, 0, len(agents))
	for _, agent := range agents {
		if !agent.OnboardingComplete {
			pending = append(pending, agent.ToResponse())
		}
	}
	return pending, nil
}

// ListClients returns all clients (admin only)
func (s *UserService) ListClients(ctx context.Context, actor domain.Actor) ([]*models.UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	clients, err := s.userRepo.ListByRole(ctx, string(domain.RoleClient))
	if err != nil {
		return nil, err
	}
	return toResponses(clients), nil
}

func toResponses(users []*models.User) []*models.UserResponse {
	out := make([]*models.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	return out
}
