package handlers

import (
	"errors"

	"greetops/internal/core/domain"
	"greetops/internal/core/services"
	"greetops/internal/pkg/pagination"
	"greetops/internal/pkg/response"
	"greetops/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user profile and directory endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CompleteClientOnboarding stores the client's company profile
// @Summary Complete client onboarding
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ClientOnboardingInput true "Company profile"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/onboarding/client [post]
func (h *UserHandler) CompleteClientOnboarding(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ClientOnboardingInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	user, err := h.userService.CompleteClientOnboarding(c.Context(), userID, &input)
	if err != nil {
		return onboardingError(c, err)
	}

	return response.Success(c, "Onboarding completed successfully", user)
}

// CompleteAgentOnboarding stores the agent's contact details
// @Summary Complete agent onboarding
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.AgentOnboardingInput true "Contact details"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/onboarding/agent [post]
func (h *UserHandler) CompleteAgentOnboarding(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.AgentOnboardingInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	user, err := h.userService.CompleteAgentOnboarding(c.Context(), userID, &input)
	if err != nil {
		return onboardingError(c, err)
	}

	return response.Success(c, "Onboarding completed successfully", user)
}

func onboardingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "Onboarding does not apply to this role")
	default:
		return response.InternalServerError(c, "Failed to complete onboarding")
	}
}

// List returns all users paginated (admin only)
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	users, total, err := h.userService.List(c.Context(), actor, params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return response.Forbidden(c, "Not allowed")
		}
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", pagination.NewResponse(users, params, total))
}

// ListAgents returns all agents
// @Summary List agents
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /agents [get]
func (h *UserHandler) ListAgents(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	agents, err := h.userService.ListAgents(c.Context(), actor)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return response.Forbidden(c, "Not allowed")
		}
		return response.InternalServerError(c, "Failed to list agents")
	}

	return response.Success(c, "Agents retrieved successfully", agents)
}

// ListAvailableAgents returns agents free for assignment
// @Summary List available agents
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /agents/available [get]
func (h *UserHandler) ListAvailableAgents(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	agents, err := h.userService.ListAvailableAgents(c.Context(), actor)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return response.Forbidden(c, "Not allowed")
		}
		return response.InternalServerError(c, "Failed to list available agents")
	}

	return response.Success(c, "Available agents retrieved successfully", agents)
}

// ListPendingAgents returns agents awaiting onboarding (admin only)
// @Summary List pending agents
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /agents/pending [get]
func (h *UserHandler) ListPendingAgents(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	agents, err := h.userService.ListPendingAgents(c.Context(), actor)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return response.Forbidden(c, "Not allowed")
		}
		return response.InternalServerError(c, "Failed to list pending agents")
	}

	return response.Success(c, "Pending agents retrieved successfully", agents)
}

// ListClients returns all clients (admin only)
// @Summary List clients
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /clients [get]
func (h *UserHandler) ListClients(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	clients, err := h.userService.ListClients(c.Context(), actor)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return response.Forbidden(c, "Not allowed")
		}
		return response.InternalServerError(c, "Failed to list clients")
	}

	return response.Success(c, "Clients retrieved successfully", clients)
}
