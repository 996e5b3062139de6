package services

import (
	"context"
	"log"

	"greetops/internal/adapters/persistence/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronService runs periodic maintenance jobs
type CronService struct {
	db   *gorm.DB
	cron *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(db *gorm.DB) *CronService {
	return &CronService{
		db:   db,
		cron: cron.New(),
	}
}

// Start registers and starts all scheduled jobs
func (s *CronService) Start() error {
	// Purge expired and revoked refresh tokens nightly
	if _, err := s.cron.AddFunc("0 3 * * *", s.cleanupRefreshTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Cron jobs started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

func (s *CronService) cleanupRefreshTokens() {
	result := s.db.WithContext(context.Background()).
		Where("expires_at < NOW() OR revoked_at IS NOT NULL").
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		log.Printf("❌ Refresh token cleanup failed: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("🧹 Cleaned up %d stale refresh tokens", result.RowsAffected)
	}
}
