package services

import (
	"context"
	"testing"
	"time"

	"greetops/internal/adapters/persistence/models"
)

func newPricingFixture() (*PricingService, *fakeRateCardRepo) {
	repo := newFakeRateCardRepo()
	return NewPricingService(repo), repo
}

// A Saturday at 23:00 local time: both the night and weekend windows apply.
var saturdayNight = time.Date(2026, time.March, 7, 23, 0, 0, 0, time.UTC)

// A Wednesday at 14:00: neither surcharge window applies.
var weekdayAfternoon = time.Date(2026, time.March, 4, 14, 0, 0, 0, time.UTC)

func TestCalculatePriceSurchargesCompound(t *testing.T) {
	t.Parallel()
	svc, repo := newPricingFixture()

	repo.Create(context.Background(), &models.RateCard{
		Name:                    "Airport Meet & Greet",
		ServiceType:             "Meet & Greet",
		LocationType:            "Airport",
		BasePrice:               5500,
		PerPassengerPrice:       int64Ptr(1000),
		NightSurchargePercent:   intPtr(20),
		WeekendSurchargePercent: intPtr(10),
		IsActive:                true,
	})

	quote, err := svc.CalculatePrice(context.Background(), &QuoteInput{
		ServiceType:    "Meet & Greet",
		LocationType:   "Airport",
		ScheduledAt:    saturdayNight,
		PassengerCount: intPtr(3),
	})
	if err != nil {
		t.Fatalf("CalculatePrice: %v", err)
	}
	if quote.Price == nil {
		t.Fatal("expected a price, got nil")
	}

	// base 5500 + 2 extra passengers × 1000 = 7500
	// night 20% of 7500 = 1500 → 9000
	// weekend 10% of 9000 = 900 → 9900
	if *quote.Price != 9900 {
		t.Errorf("expected 9900, got %d", *quote.Price)
	}
	if quote.Breakdown["base"] != 5500 {
		t.Errorf("breakdown base = %d, want 5500", quote.Breakdown["base"])
	}
	if quote.Breakdown["additionalPassengers"] != 2000 {
		t.Errorf("breakdown additionalPassengers = %d, want 2000", quote.Breakdown["additionalPassengers"])
	}
	if quote.Breakdown["nightSurcharge"] != 1500 {
		t.Errorf("breakdown nightSurcharge = %d, want 1500", quote.Breakdown["nightSurcharge"])
	}
	if quote.Breakdown["weekendSurcharge"] != 900 {
		t.Errorf("breakdown weekendSurcharge = %d, want 900", quote.Breakdown["weekendSurcharge"])
	}
	if quote.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", quote.Currency)
	}
}

func TestCalculatePriceFirstPassengerCovered(t *testing.T) {
	t.Parallel()
	svc, repo := newPricingFixture()

	repo.Create(context.Background(), &models.RateCard{
		Name:              "With per-passenger",
		ServiceType:       "Meet & Greet",
		LocationType:      "Airport",
		BasePrice:         5000,
		PerPassengerPrice: int64Ptr(1000),
		IsActive:          true,
	})

	quote, err := svc.CalculatePrice(context.Background(), &QuoteInput{
		ServiceType:    "Meet & Greet",
		LocationType:   "Airport",
		ScheduledAt:    weekdayAfternoon,
		PassengerCount: intPtr(1),
	})
	if err != nil {
		t.Fatalf("CalculatePrice: %v", err)
	}
	if *quote.Price != 5000 {
		t.Errorf("single passenger should pay base only, got %d", *quote.Price)
	}
	if _, present := quote.Breakdown["additionalPassengers"]; present {
		t.Error("breakdown should not include additionalPassengers for one passenger")
	}
}

func TestCalculatePriceDistance(t *testing.T) {
	t.Parallel()
	svc, repo := newPricingFixture()

	repo.Create(context.Background(), &models.RateCard{
		Name:         "Transfer",
		ServiceType:  "Transfer",
		LocationType: "Address",
		BasePrice:    4000,
		PerKmPrice:   int64Ptr(200),
		IsActive:     true,
	})

	quote, err := svc.CalculatePrice(context.Background(), &QuoteInput{
		ServiceType:  "Transfer",
		LocationType: "Address",
		ScheduledAt:  weekdayAfternoon,
		DistanceKm:   float64Ptr(12.5),
	})
	if err != nil {
		t.Fatalf("CalculatePrice: %v", err)
	}
	// 4000 + round(200 × 12.5) = 6500
	if *quote.Price != 6500 {
		t.Errorf("expected 6500, got %d", *quote.Price)
	}
	if quote.Breakdown["distance"] != 2500 {
		t.Errorf("breakdown distance = %d, want 2500", quote.Breakdown["distance"])
	}
}

func TestCalculatePriceMinimumClamp(t *testing.T) {
	t.Parallel()
	svc, repo := newPricingFixture()

	repo.Create(context.Background(), &models.RateCard{
		Name:         "Floored",
		ServiceType:  "Transfer",
		LocationType: "Address",
		BasePrice:    3000,
		MinimumPrice: int64Ptr(4000),
		IsActive:     true,
	})

	quote, err := svc.CalculatePrice(context.Background(), &QuoteInput{
		ServiceType:  "Transfer",
		LocationType: "Address",
		ScheduledAt:  weekdayAfternoon,
	})
	if err != nil {
		t.Fatalf("CalculatePrice: %v", err)
	}
	if *quote.Price != 4000 {
		t.Errorf("expected minimum 4000, got %d", *quote.Price)
	}
	if quote.Breakdown["minimumApplied"] != 4000 {
		t.Errorf("breakdown minimumApplied = %d, want 4000", quote.Breakdown["minimumApplied"])
	}
}

func TestCalculatePriceMinimumNotAppliedAtExactFloor(t *testing.T) {
	t.Parallel()
	svc, repo := newPricingFixture()

	repo.Create(context.Background(), &models.RateCard{
		Name:         "Exact floor",
		ServiceType:  "Transfer",
		LocationType: "Address",
		BasePrice:    4000,
		MinimumPrice: int64Ptr(4000),
		IsActive:     true,
	})

	quote, err := svc.CalculatePrice(context.Background(), &QuoteInput{
		ServiceType:  "Transfer",
		LocationType: "Address",
		ScheduledAt:  weekdayAfternoon,
	})
	if err != nil {
		t.Fatalf("CalculatePrice: %v", err)
	}
	if *quote.Price != 4000 {
		t.Errorf("expected 4000, got %d", *quote.Price)
	}
	// Clamp is strict less-than: reaching the floor exactly is not a clamp
	if _, present := quote.Breakdown["minimumApplied"]; present {
		t.Error("minimumApplied should not be recorded when price equals the floor")
	}
}

func TestCalculatePriceNoRateCard(t *testing.T) {
	t.Parallel()
	svc, _ := newPricingFixture()

	quote, err := svc.CalculatePrice(context.Background(), &QuoteInput{
		ServiceType:  "VIP",
		LocationType: "Port",
		ScheduledAt:  weekdayAfternoon,
	})
	if err != nil {
		t.Fatalf("no rate card must not be an error, got %v", err)
	}
	if quote.Price != nil {
		t.Errorf("expected nil price, got %d", *quote.Price)
	}
	if quote.Message == "" {
		t.Error("expected an explanatory message")
	}
}

func TestCalculatePriceHolidayPercentIgnored(t *testing.T) {
	t.Parallel()
	svc, repo := newPricingFixture()

	repo.Create(context.Background(), &models.RateCard{
		Name:                    "With holiday field",
		ServiceType:             "Meet & Greet",
		LocationType:            "Airport",
		BasePrice:               5000,
		HolidaySurchargePercent: intPtr(50),
		IsActive:                true,
	})

	quote, err := svc.CalculatePrice(context.Background(), &QuoteInput{
		ServiceType:  "Meet & Greet",
		LocationType: "Airport",
		ScheduledAt:  weekdayAfternoon,
	})
	if err != nil {
		t.Fatalf("CalculatePrice: %v", err)
	}
	if *quote.Price != 5000 {
		t.Errorf("holiday percent must not affect the price, got %d", *quote.Price)
	}
}

func TestResolveClientSpecificWinsOverDefault(t *testing.T) {
	t.Parallel()
	svc, repo := newPricingFixture()

	repo.Create(context.Background(), &models.RateCard{
		Name:         "Platform default",
		ServiceType:  "Meet & Greet",
		LocationType: "Airport",
		BasePrice:    5500,
		IsActive:     true,
	})
	repo.Create(context.Background(), &models.RateCard{
		ClientID:     uintPtr(42),
		Name:         "Negotiated",
		ServiceType:  "Meet & Greet",
		LocationType: "Airport",
		BasePrice:    4800,
		IsActive:     true,
	})

	card, err := svc.Resolve(context.Background(), "Meet & Greet", "Airport", uintPtr(42))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if card == nil || card.Name != "Negotiated" {
		t.Fatalf("expected the client-specific card, got %+v", card)
	}

	// A different client falls back to the platform default
	card, err = svc.Resolve(context.Background(), "Meet & Greet", "Airport", uintPtr(7))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if card == nil || card.Name != "Platform default" {
		t.Fatalf("expected the default card, got %+v", card)
	}
}

func TestResolveInactiveCardsSkipped(t *testing.T) {
	t.Parallel()
	svc, repo := newPricingFixture()

	repo.Create(context.Background(), &models.RateCard{
		Name:         "Retired",
		ServiceType:  "VIP",
		LocationType: "Airport",
		BasePrice:    15000,
		IsActive:     false,
	})

	card, err := svc.Resolve(context.Background(), "VIP", "Airport", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if card != nil {
		t.Fatalf("inactive card must not resolve, got %+v", card)
	}
}

func TestRoundPercentHalfUp(t *testing.T) {
	t.Parallel()

	cases := []struct {
		cents int64
		pct   int
		want  int64
	}{
		{7500, 20, 1500},
		{9000, 10, 900},
		{105, 10, 11},  // 10.5 rounds up
		{104, 10, 10},  // 10.4 rounds down
		{1, 10, 0},     // 0.1 rounds down
		{5, 10, 1},     // 0.5 rounds up
		{0, 25, 0},
	}
	for _, tc := range cases {
		if got := roundPercent(tc.cents, tc.pct); got != tc.want {
			t.Errorf("roundPercent(%d, %d) = %d, want %d", tc.cents, tc.pct, got, tc.want)
		}
	}
}
