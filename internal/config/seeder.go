package config

import (
	"log"

	"greetops/internal/adapters/persistence/models"
	"greetops/internal/core/domain"

	"gorm.io/gorm"
)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

// SeedRateCards installs the platform-default rate cards on first boot.
// Skipped when any rate card already exists so admin edits survive restarts.
func SeedRateCards(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.RateCard{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("ℹ️ Rate cards already present, skipping seed")
		return nil
	}

	defaults := []models.RateCard{
		{
			Name:                    "Airport Meet & Greet",
			Description:             strPtr("Standard airport welcome service"),
			ServiceType:             string(domain.ServiceMeetGreet),
			LocationType:            string(domain.LocationAirport),
			BasePrice:               5500,
			PerPassengerPrice:       int64Ptr(1000),
			NightSurchargePercent:   intPtr(20),
			WeekendSurchargePercent: intPtr(10),
			IsActive:                true,
		},
		{
			Name:                    "Airport VIP",
			Description:             strPtr("Premium VIP airport service with lounge access"),
			ServiceType:             string(domain.ServiceVIP),
			LocationType:            string(domain.LocationAirport),
			BasePrice:               15000,
			PerPassengerPrice:       int64Ptr(3000),
			NightSurchargePercent:   intPtr(25),
			WeekendSurchargePercent: intPtr(15),
			IsActive:                true,
		},
		{
			Name:                    "Airport Group",
			Description:             strPtr("Group assistance at airport"),
			ServiceType:             string(domain.ServiceGroup),
			LocationType:            string(domain.LocationAirport),
			BasePrice:               8000,
			PerPassengerPrice:       int64Ptr(800),
			MinimumPrice:            int64Ptr(8000),
			NightSurchargePercent:   intPtr(20),
			WeekendSurchargePercent: intPtr(10),
			IsActive:                true,
		},
		{
			Name:                    "Train Station Assistance",
			Description:             strPtr("Meet & greet at train station"),
			ServiceType:             string(domain.ServiceTrainStation),
			LocationType:            string(domain.LocationTrainStation),
			BasePrice:               4500,
			PerPassengerPrice:       int64Ptr(800),
			NightSurchargePercent:   intPtr(20),
			WeekendSurchargePercent: intPtr(10),
			IsActive:                true,
		},
		{
			Name:                    "Port/Cruise Assistance",
			Description:             strPtr("Welcome service at cruise port"),
			ServiceType:             string(domain.ServicePort),
			LocationType:            string(domain.LocationPort),
			BasePrice:               6000,
			PerPassengerPrice:       int64Ptr(1000),
			NightSurchargePercent:   intPtr(20),
			WeekendSurchargePercent: intPtr(10),
			IsActive:                true,
		},
		{
			Name:                    "Standard Transfer",
			Description:             strPtr("Vehicle transfer service"),
			ServiceType:             string(domain.ServiceTransfer),
			LocationType:            string(domain.LocationAddress),
			BasePrice:               4000,
			PerKmPrice:              int64Ptr(200),
			MinimumPrice:            int64Ptr(4000),
			NightSurchargePercent:   intPtr(25),
			WeekendSurchargePercent: intPtr(15),
			IsActive:                true,
		},
	}

	if err := db.Create(&defaults).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d default rate cards", len(defaults))
	return nil
}
