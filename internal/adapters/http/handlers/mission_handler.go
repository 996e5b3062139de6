package handlers

import (
	"errors"
	"strconv"

	"greetops/internal/core/domain"
	"greetops/internal/core/services"
	"greetops/internal/pkg/pagination"
	"greetops/internal/pkg/response"
	"greetops/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// MissionHandler handles mission lifecycle endpoints
type MissionHandler struct {
	missionService *services.MissionService
	eventService   *services.EventService
}

// NewMissionHandler creates a new mission handler
func NewMissionHandler(missionService *services.MissionService, eventService *services.EventService) *MissionHandler {
	return &MissionHandler{
		missionService: missionService,
		eventService:   eventService,
	}
}

// actorFromCtx builds the acting identity from auth middleware locals
func actorFromCtx(c *fiber.Ctx) (domain.Actor, bool) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return domain.Actor{}, false
	}
	role, ok := c.Locals("role").(string)
	if !ok {
		return domain.Actor{}, false
	}
	return domain.Actor{UserID: userID, Role: domain.Role(role)}, true
}

// missionIDParam parses the :id path parameter
func missionIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// Create handles mission creation
// @Summary Create mission
// @Description Create a new mission in Scheduled status, optionally quoted
// @Tags Missions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateMissionInput true "Mission data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /missions [post]
func (h *MissionHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateMissionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	// Admins may create on behalf of a client via ?client_id
	clientID := actor.UserID
	if actor.IsAdmin() {
		if v, err := strconv.ParseUint(c.Query("client_id"), 10, 32); err == nil {
			clientID = uint(v)
		}
	}

	mission, err := h.missionService.Create(c.Context(), actor, clientID, &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return response.BadRequest(c, "Missing or malformed required field")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Not allowed to create missions for this client")
		default:
			return response.InternalServerError(c, "Failed to create mission")
		}
	}

	return response.Created(c, "Mission created successfully", mission)
}

// Get returns a single mission
// @Summary Get mission
// @Tags Missions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /missions/{id} [get]
func (h *MissionHandler) Get(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	missionID, err := missionIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid mission ID")
	}

	mission, err := h.missionService.Get(c.Context(), actor, missionID)
	if err != nil {
		return missionError(c, err)
	}

	return response.Success(c, "Mission retrieved successfully", mission)
}

// List returns the caller's missions (client or agent view)
// @Summary List missions
// @Tags Missions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /missions [get]
func (h *MissionHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if actor.Role == domain.RoleAgent {
		missions, err := h.missionService.ListByAgent(c.Context(), actor, actor.UserID)
		if err != nil {
			return response.InternalServerError(c, "Failed to list missions")
		}
		return response.Success(c, "Missions retrieved successfully", missions)
	}

	clientID := actor.UserID
	if actor.IsAdmin() {
		if v, err := strconv.ParseUint(c.Query("client_id"), 10, 32); err == nil {
			clientID = uint(v)
		}
	}

	params := pagination.GetParams(c)
	missions, total, err := h.missionService.ListByClient(c.Context(), actor, clientID, params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return response.Forbidden(c, "Not allowed")
		}
		return response.InternalServerError(c, "Failed to list missions")
	}

	return response.Success(c, "Missions retrieved successfully", pagination.NewResponse(missions, params, total))
}

// Advance moves the mission to the next status in its sequence
// @Summary Advance mission status
// @Tags Missions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /missions/{id}/advance [post]
func (h *MissionHandler) Advance(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	missionID, err := missionIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid mission ID")
	}

	mission, err := h.missionService.Advance(c.Context(), actor, missionID)
	if err != nil {
		return missionError(c, err)
	}

	return response.Success(c, "Mission status advanced", mission)
}

// SetStatusRequest represents an explicit status override body
type SetStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus sets an explicit mission status (override path)
// @Summary Set mission status
// @Tags Missions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Param body body SetStatusRequest true "Target status"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /missions/{id}/status [patch]
func (h *MissionHandler) SetStatus(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	missionID, err := missionIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid mission ID")
	}

	var req SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Status == "" {
		return response.BadRequest(c, "Status is required")
	}

	mission, err := h.missionService.SetStatus(c.Context(), actor, missionID, req.Status)
	if err != nil {
		return missionError(c, err)
	}

	return response.Success(c, "Mission status updated", mission)
}

// AssignAgentRequest represents an agent assignment body
type AssignAgentRequest struct {
	AgentID uint `json:"agent_id"`
}

// AssignAgent binds an agent to a mission
// @Summary Assign agent
// @Tags Missions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Param body body AssignAgentRequest true "Agent"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /missions/{id}/assign [post]
func (h *MissionHandler) AssignAgent(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	missionID, err := missionIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid mission ID")
	}

	var req AssignAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.AgentID == 0 {
		return response.BadRequest(c, "Agent ID is required")
	}

	if err := h.missionService.AssignAgent(c.Context(), actor, missionID, req.AgentID); err != nil {
		switch {
		case errors.Is(err, domain.ErrAgentNotFound):
			return response.NotFound(c, "Agent not found")
		case errors.Is(err, domain.ErrNotAnAgent):
			return response.BadRequest(c, "User is not an agent")
		default:
			return missionError(c, err)
		}
	}

	return response.Success(c, "Agent assigned successfully", nil)
}

// ListEvents returns the mission's audit trail, oldest first
// @Summary List mission events
// @Tags Missions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Success 200 {object} response.Response
// @Router /missions/{id}/events [get]
func (h *MissionHandler) ListEvents(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	missionID, err := missionIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid mission ID")
	}

	events, err := h.eventService.ListByMission(c.Context(), actor, missionID)
	if err != nil {
		return missionError(c, err)
	}

	return response.Success(c, "Events retrieved successfully", events)
}

// AddNoteRequest represents a note event body
type AddNoteRequest struct {
	Note string `json:"note"`
}

// AddNote appends a note event to the mission trail
// @Summary Add mission note
// @Tags Missions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Param body body AddNoteRequest true "Note"
// @Success 201 {object} response.Response
// @Router /missions/{id}/notes [post]
func (h *MissionHandler) AddNote(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	missionID, err := missionIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid mission ID")
	}

	var req AddNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Note == "" {
		return response.BadRequest(c, "Note is required")
	}

	event, err := h.eventService.RecordNote(c.Context(), actor, missionID, req.Note)
	if err != nil {
		return missionError(c, err)
	}

	return response.Created(c, "Note added successfully", event)
}

// AddPhotoRequest represents a photo event body
type AddPhotoRequest struct {
	PhotoRef string  `json:"photo_ref"`
	Note     *string `json:"note"`
}

// AddPhoto appends a photo event to the mission trail
// @Summary Add mission photo
// @Tags Missions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Param body body AddPhotoRequest true "Photo reference"
// @Success 201 {object} response.Response
// @Router /missions/{id}/photos [post]
func (h *MissionHandler) AddPhoto(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	missionID, err := missionIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid mission ID")
	}

	var req AddPhotoRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.PhotoRef == "" {
		return response.BadRequest(c, "Photo reference is required")
	}

	event, err := h.eventService.RecordPhoto(c.Context(), actor, missionID, req.PhotoRef, req.Note)
	if err != nil {
		return missionError(c, err)
	}

	return response.Created(c, "Photo recorded successfully", event)
}

// AddAttachmentRequest represents a mission document reference body
type AddAttachmentRequest struct {
	StorageRef string `json:"storage_ref"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
}

// AddAttachment attaches a document reference to the mission
// @Summary Add mission attachment
// @Tags Missions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Param body body AddAttachmentRequest true "Document reference"
// @Success 201 {object} response.Response
// @Router /missions/{id}/attachments [post]
func (h *MissionHandler) AddAttachment(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	missionID, err := missionIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid mission ID")
	}

	var req AddAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	att, err := h.missionService.AddAttachment(c.Context(), actor, missionID, req.StorageRef, req.FileName, req.FileType)
	if err != nil {
		return missionError(c, err)
	}

	return response.Created(c, "Attachment added successfully", att)
}

// ListAttachments lists a mission's attached documents
// @Summary List mission attachments
// @Tags Missions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Success 200 {object} response.Response
// @Router /missions/{id}/attachments [get]
func (h *MissionHandler) ListAttachments(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	missionID, err := missionIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid mission ID")
	}

	attachments, err := h.missionService.ListAttachments(c.Context(), actor, missionID)
	if err != nil {
		return missionError(c, err)
	}

	return response.Success(c, "Attachments retrieved successfully", attachments)
}

// UploadURL mints an upload URL for a mission photo
// @Summary Generate upload URL
// @Tags Missions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /missions/upload-url [post]
func (h *MissionHandler) UploadURL(c *fiber.Ctx) error {
	if _, ok := actorFromCtx(c); !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	url, err := h.eventService.GenerateUploadURL(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to generate upload URL")
	}

	return response.Success(c, "Upload URL generated", fiber.Map{"upload_url": url})
}

// missionError maps mission domain errors to HTTP responses
func missionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrMissionNotFound):
		return response.NotFound(c, "Mission not found")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "Not allowed")
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.Conflict(c, "Invalid status transition")
	case errors.Is(err, domain.ErrUnknownStatus):
		return response.BadRequest(c, "Unknown mission status")
	case errors.Is(err, domain.ErrInvalidState):
		return response.Conflict(c, "Mission is not in an active status")
	case errors.Is(err, domain.ErrValidation):
		return response.BadRequest(c, "Missing or malformed required field")
	default:
		return response.InternalServerError(c, "Internal server error")
	}
}
