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

// RateCardService handles admin CRUD on pricing rules. Reads are open to
// authenticated users (clients see defaults plus their own rules).
type RateCardService struct {
	rateCardRepo repositories.RateCardRepository
}

// NewRateCardService creates a new rate card service
func NewRateCardService(rateCardRepo repositories.RateCardRepository) *RateCardService {
	return &RateCardService{rateCardRepo: rateCardRepo}
}

// CreateRateCardInput represents rate card creation input
type CreateRateCardInput struct {
	ClientID    *uint   `json:"client_id"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`

	ServiceType  string `json:"service_type" validate:"required"`
	LocationType string `json:"location_type" validate:"required"`

	BasePrice         int64  `json:"base_price" validate:"min=0"`
	PerPassengerPrice *int64 `json:"per_passenger_price" validate:"omitempty,min=0"`
	PerKmPrice        *int64 `json:"per_km_price" validate:"omitempty,min=0"`
	MinimumPrice      *int64 `json:"minimum_price" validate:"omitempty,min=0"`

	NightSurchargePercent   *int `json:"night_surcharge_percent" validate:"omitempty,min=0,max=100"`
	WeekendSurchargePercent *int `json:"weekend_surcharge_percent" validate:"omitempty,min=0,max=100"`
	HolidaySurchargePercent *int `json:"holiday_surcharge_percent" validate:"omitempty,min=0,max=100"`

	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
}

// UpdateRateCardInput represents a partial rate card update
type UpdateRateCardInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`

	BasePrice         *int64 `json:"base_price" validate:"omitempty,min=0"`
	PerPassengerPrice *int64 `json:"per_passenger_price" validate:"omitempty,min=0"`
	PerKmPrice        *int64 `json:"per_km_price" validate:"omitempty,min=0"`
	MinimumPrice      *int64 `json:"minimum_price" validate:"omitempty,min=0"`

	NightSurchargePercent   *int `json:"night_surcharge_percent" validate:"omitempty,min=0,max=100"`
	WeekendSurchargePercent *int `json:"weekend_surcharge_percent" validate:"omitempty,min=0,max=100"`
	HolidaySurchargePercent *int `json:"holiday_surcharge_percent" validate:"omitempty,min=0,max=100"`

	IsActive   *bool      `json:"is_active"`
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
}

// Create creates a new active rate card (Admin only, enforced at the route)
func (s *RateCardService) Create(ctx context.Context, input *CreateRateCardInput) (*models.RateCard, error) {
	if !domain.ServiceType(input.ServiceType).IsValid() || !domain.LocationType(input.LocationType).IsValid() {
		return nil, domain.ErrValidation
	}

	card := &models.RateCard{
		ClientID:                input.ClientID,
		Name:                    input.Name,
		Description:             input.Description,
		ServiceType:             input.ServiceType,
		LocationType:            input.LocationType,
		BasePrice:               input.BasePrice,
		PerPassengerPrice:       input.PerPassengerPrice,
		PerKmPrice:              input.PerKmPrice,
		MinimumPrice:            input.MinimumPrice,
		NightSurchargePercent:   input.NightSurchargePercent,
		WeekendSurchargePercent: input.WeekendSurchargePercent,
		HolidaySurchargePercent: input.HolidaySurchargePercent,
		IsActive:                true,
		ValidFrom:               input.ValidFrom,
		ValidUntil:              input.ValidUntil,
	}

	if err := s.rateCardRepo.Create(ctx, card); err != nil {
		return nil, err
	}

	log.Printf("✅ Rate card created: #%d %s (%s / %s)", card.ID, card.Name, card.ServiceType, card.LocationType)
	return card, nil
}

// Update applies a partial update to a rate card
func (s *RateCardService) Update(ctx context.Context, id uint, input *UpdateRateCardInput) (*models.RateCard, error) {
	card, err := s.rateCardRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRateCardNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		card.Name = *input.Name
	}
	if input.Description != nil {
		card.Description = input.Description
	}
	if input.BasePrice != nil {
		card.BasePrice = *input.BasePrice
	}
	if input.PerPassengerPrice != nil {
		card.PerPassengerPrice = input.PerPassengerPrice
	}
	if input.PerKmPrice != nil {
		card.PerKmPrice = input.PerKmPrice
	}
	if input.MinimumPrice != nil {
		card.MinimumPrice = input.MinimumPrice
	}
	if input.NightSurchargePercent != nil {
		card.NightSurchargePercent = input.NightSurchargePercent
	}
	if input.WeekendSurchargePercent != nil {
		card.WeekendSurchargePercent = input.WeekendSurchargePercent
	}
	if input.HolidaySurchargePercent != nil {
		card.HolidaySurchargePercent = input.HolidaySurchargePercent
	}
	if input.IsActive != nil {
		card.IsActive = *input.IsActive
	}
	if input.ValidFrom != nil {
		card.ValidFrom = input.ValidFrom
	}
	if input.ValidUntil != nil {
		card.ValidUntil = input.ValidUntil
	}

	if err := s.rateCardRepo.Update(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// Delete hard-deletes a rate card
func (s *RateCardService) Delete(ctx context.Context, id uint) error {
	if _, err := s.rateCardRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRateCardNotFound
		}
		return err
	}
	return s.rateCardRepo.Delete(ctx, id)
}

// List lists all rate cards (admin view, includes inactive)
func (s *RateCardService) List(ctx context.Context) ([]*models.RateCard, error) {
	return s.rateCardRepo.List(ctx)
}

// ListDefaults lists active platform-default rate cards
func (s *RateCardService) ListDefaults(ctx context.Context) ([]*models.RateCard, error) {
	return s.rateCardRepo.ListDefaults(ctx)
}

// ListByClient lists a client's active custom rate cards
func (s *RateCardService) ListByClient(ctx context.Context, actor domain.Actor, clientID uint) ([]*models.RateCard, error) {
	if !actor.IsAdmin() && actor.UserID != clientID {
		return nil, domain.ErrForbidden
	}
	return s.rateCardRepo.ListByClient(ctx, clientID)
}
