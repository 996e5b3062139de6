package handlers

import (
	"errors"
	"strconv"
	"time"

	"greetops/internal/core/domain"
	"greetops/internal/core/services"
	"greetops/internal/pkg/response"
	"greetops/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// RateCardHandler handles pricing rule endpoints
type RateCardHandler struct {
	rateCardService *services.RateCardService
	pricingService  *services.PricingService
}

// NewRateCardHandler creates a new rate card handler
func NewRateCardHandler(rateCardService *services.RateCardService, pricingService *services.PricingService) *RateCardHandler {
	return &RateCardHandler{
		rateCardService: rateCardService,
		pricingService:  pricingService,
	}
}

// Create creates a rate card (admin only, enforced at the route)
// @Summary Create rate card
// @Tags RateCards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRateCardInput true "Rate card data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /rate-cards [post]
func (h *RateCardHandler) Create(c *fiber.Ctx) error {
	var input services.CreateRateCardInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	card, err := h.rateCardService.Create(c.Context(), &input)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return response.BadRequest(c, "Invalid service or location type")
		}
		return response.InternalServerError(c, "Failed to create rate card")
	}

	return response.Created(c, "Rate card created successfully", card)
}

// Update partially updates a rate card (admin only)
// @Summary Update rate card
// @Tags RateCards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Rate card ID"
// @Param body body services.UpdateRateCardInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /rate-cards/{id} [patch]
func (h *RateCardHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid rate card ID")
	}

	var input services.UpdateRateCardInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	card, err := h.rateCardService.Update(c.Context(), uint(id), &input)
	if err != nil {
		if errors.Is(err, domain.ErrRateCardNotFound) {
			return response.NotFound(c, "Rate card not found")
		}
		return response.InternalServerError(c, "Failed to update rate card")
	}

	return response.Success(c, "Rate card updated successfully", card)
}

// Delete removes a rate card (admin only)
// @Summary Delete rate card
// @Tags RateCards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Rate card ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /rate-cards/{id} [delete]
func (h *RateCardHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid rate card ID")
	}

	if err := h.rateCardService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, domain.ErrRateCardNotFound) {
			return response.NotFound(c, "Rate card not found")
		}
		return response.InternalServerError(c, "Failed to delete rate card")
	}

	return response.Success(c, "Rate card deleted successfully", nil)
}

// List returns all rate cards (admin only)
// @Summary List rate cards
// @Tags RateCards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /rate-cards [get]
func (h *RateCardHandler) List(c *fiber.Ctx) error {
	cards, err := h.rateCardService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list rate cards")
	}
	return response.Success(c, "Rate cards retrieved successfully", cards)
}

// ListDefaults returns the platform-default rate cards
// @Summary List default rate cards
// @Tags RateCards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /rate-cards/defaults [get]
func (h *RateCardHandler) ListDefaults(c *fiber.Ctx) error {
	cards, err := h.rateCardService.ListDefaults(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list default rate cards")
	}
	return response.Success(c, "Default rate cards retrieved successfully", cards)
}

// ListForClient returns defaults plus a client's own rules
// @Summary List rate cards visible to a client
// @Tags RateCards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} response.Response
// @Router /clients/{id}/rate-cards [get]
func (h *RateCardHandler) ListForClient(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	clientID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid client ID")
	}

	cards, err := h.rateCardService.ListByClient(c.Context(), actor, uint(clientID))
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return response.Forbidden(c, "Not allowed")
		}
		return response.InternalServerError(c, "Failed to list rate cards")
	}
	return response.Success(c, "Rate cards retrieved successfully", cards)
}

// QuoteRequest represents a price quote request
type QuoteRequest struct {
	ServiceType    string    `json:"service_type"`
	LocationType   string    `json:"location_type"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	PassengerCount *int      `json:"passenger_count"`
	DistanceKm     *float64  `json:"distance_km"`
	ClientID       *uint     `json:"client_id"`
}

// Quote calculates a price without creating a mission
// @Summary Calculate price quote
// @Tags RateCards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body QuoteRequest true "Quote parameters"
// @Success 200 {object} response.Response
// @Router /quotes [post]
func (h *RateCardHandler) Quote(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ServiceType == "" || req.LocationType == "" || req.ScheduledAt.IsZero() {
		return response.BadRequest(c, "service_type, location_type and scheduled_at are required")
	}

	// Clients always quote against their own rules
	clientID := req.ClientID
	if !actor.IsAdmin() {
		clientID = &actor.UserID
	}

	quote, err := h.pricingService.CalculatePrice(c.Context(), &services.QuoteInput{
		ServiceType:    req.ServiceType,
		LocationType:   req.LocationType,
		ScheduledAt:    req.ScheduledAt,
		PassengerCount: req.PassengerCount,
		DistanceKm:     req.DistanceKm,
		ClientID:       clientID,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to calculate quote")
	}

	return response.Success(c, "Quote calculated successfully", quote)
}
