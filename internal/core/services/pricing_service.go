package services

import (
	"context"
	"math"
	"time"

	"greetops/internal/adapters/persistence/models"
	"greetops/internal/adapters/persistence/repositories"
)

// Currency is the only currency the platform quotes in
const Currency = "EUR"

// PricingService resolves rate cards and computes quoted prices. All
// monetary values are integer cents; surcharges use round-half-up on the
// running total.
type PricingService struct {
	rateCardRepo repositories.RateCardRepository
}

// NewPricingService creates a new pricing service
func NewPricingService(rateCardRepo repositories.RateCardRepository) *PricingService {
	return &PricingService{rateCardRepo: rateCardRepo}
}

// QuoteInput represents price calculation input
type QuoteInput struct {
	ServiceType    string    `json:"service_type" validate:"required"`
	LocationType   string    `json:"location_type" validate:"required"`
	ScheduledAt    time.Time `json:"scheduled_at" validate:"required"`
	PassengerCount *int      `json:"passenger_count" validate:"omitempty,min=1"`
	DistanceKm     *float64  `json:"distance_km" validate:"omitempty,min=0"`
	ClientID       *uint     `json:"client_id"`
}

// Quote represents a computed price with its itemized breakdown. Price is
// nil when no rate card matches; that is an expected outcome, not an error.
type Quote struct {
	Price        *int64           `json:"price"`
	Breakdown    map[string]int64 `json:"breakdown"`
	RateCardID   uint             `json:"rate_card_id,omitempty"`
	RateCardName string           `json:"rate_card_name,omitempty"`
	Currency     string           `json:"currency,omitempty"`
	Message      string           `json:"message,omitempty"`
}

// Resolve finds the applicable rate card: an active client-specific rule
// first, then an active platform default. Returns (nil, nil) when neither
// tier matches.
func (s *PricingService) Resolve(ctx context.Context, serviceType, locationType string, clientID *uint) (*models.RateCard, error) {
	if clientID != nil {
		card, err := s.rateCardRepo.FindActive(ctx, clientID, serviceType, locationType)
		if err != nil {
			return nil, err
		}
		if card != nil {
			return card, nil
		}
	}
	return s.rateCardRepo.FindActive(ctx, nil, serviceType, locationType)
}

// CalculatePrice computes a quote from the applicable rate card.
//
// Order matters and is part of the contract: base, additional passengers,
// distance, then night surcharge, then weekend surcharge (each surcharge
// computed on the running total including prior surcharges), then the
// minimum floor.
func (s *PricingService) CalculatePrice(ctx context.Context, input *QuoteInput) (*Quote, error) {
	card, err := s.Resolve(ctx, input.ServiceType, input.LocationType, input.ClientID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return &Quote{
			Price:   nil,
			Message: "No rate card found for this service configuration",
		}, nil
	}

	price := card.BasePrice
	breakdown := map[string]int64{
		"base": card.BasePrice,
	}

	// Additional-passenger pricing: the first passenger is covered by the
	// base price.
	passengerCount := 1
	if input.PassengerCount != nil {
		passengerCount = *input.PassengerCount
	}
	if card.PerPassengerPrice != nil && passengerCount > 1 {
		charge := *card.PerPassengerPrice * int64(passengerCount-1)
		price += charge
		breakdown["additionalPassengers"] = charge
	}

	// Distance-based pricing for transfers
	if card.PerKmPrice != nil && input.DistanceKm != nil {
		charge := int64(math.Round(float64(*card.PerKmPrice) * *input.DistanceKm))
		price += charge
		breakdown["distance"] = charge
	}

	hour := input.ScheduledAt.Hour()
	dayOfWeek := input.ScheduledAt.Weekday()

	// Night surcharge (10pm - 6am), on the running total
	if card.NightSurchargePercent != nil && (hour >= 22 || hour < 6) {
		surcharge := roundPercent(price, *card.NightSurchargePercent)
		price += surcharge
		breakdown["nightSurcharge"] = surcharge
	}

	// Weekend surcharge, on the running total including the night surcharge
	if card.WeekendSurchargePercent != nil && (dayOfWeek == time.Saturday || dayOfWeek == time.Sunday) {
		surcharge := roundPercent(price, *card.WeekendSurchargePercent)
		price += surcharge
		breakdown["weekendSurcharge"] = surcharge
	}

	// Holiday surcharge is stored on the card but not evaluated.

	// Floor price: clamp only when strictly below the minimum
	if card.MinimumPrice != nil && price < *card.MinimumPrice {
		price = *card.MinimumPrice
		breakdown["minimumApplied"] = *card.MinimumPrice
	}

	return &Quote{
		Price:        &price,
		Breakdown:    breakdown,
		RateCardID:   card.ID,
		RateCardName: card.Name,
		Currency:     Currency,
	}, nil
}

// roundPercent returns round(cents × pct / 100) in pure integer arithmetic
// (round half up, values are non-negative).
func roundPercent(cents int64, pct int) int64 {
	return (cents*int64(pct) + 50) / 100
}
