package handlers

import (
	"errors"
	"strconv"

	"greetops/internal/core/domain"
	"greetops/internal/core/services"
	"greetops/internal/pkg/response"
	"greetops/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// LocationHandler handles position ledger endpoints
type LocationHandler struct {
	locationService *services.LocationService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locationService *services.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// Record appends a position sample to the mission's ledger
// @Summary Record location sample
// @Tags Locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Param body body services.RecordInput true "Position sample"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /missions/{id}/locations [post]
func (h *LocationHandler) Record(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	missionID, err := missionIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid mission ID")
	}

	var input services.RecordInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	sample, err := h.locationService.Record(c.Context(), actor, missionID, &input)
	if err != nil {
		return missionError(c, err)
	}

	return response.Created(c, "Location recorded successfully", sample)
}

// Latest returns the newest sample for a mission, null when none exist
// @Summary Latest location
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Success 200 {object} response.Response
// @Router /missions/{id}/locations/latest [get]
func (h *LocationHandler) Latest(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	missionID, err := missionIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid mission ID")
	}

	sample, err := h.locationService.Latest(c.Context(), actor, missionID)
	if err != nil {
		return missionError(c, err)
	}

	// sample is null when no position has been recorded yet
	return response.Success(c, "Latest location retrieved", sample)
}

// History returns the full ledger for a mission, oldest first
// @Summary Location history
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mission ID"
// @Success 200 {object} response.Response
// @Router /missions/{id}/locations [get]
func (h *LocationHandler) History(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	missionID, err := missionIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid mission ID")
	}

	samples, err := h.locationService.History(c.Context(), actor, missionID)
	if err != nil {
		return missionError(c, err)
	}

	return response.Success(c, "Location history retrieved", samples)
}

// ActiveMissions returns a client's in-flight missions with last positions
// @Summary Active missions with positions
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /missions/active [get]
func (h *LocationHandler) ActiveMissions(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	clientID := actor.UserID
	if actor.IsAdmin() {
		if v, err := strconv.ParseUint(c.Query("client_id"), 10, 32); err == nil {
			clientID = uint(v)
		}
	}

	missions, err := h.locationService.ActiveMissions(c.Context(), actor, clientID)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return response.Forbidden(c, "Not allowed")
		}
		return response.InternalServerError(c, "Failed to list active missions")
	}

	return response.Success(c, "Active missions retrieved", missions)
}
