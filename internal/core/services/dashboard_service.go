package services

import (
	"context"

	"greetops/internal/adapters/persistence/models"
	"greetops/internal/core/domain"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// DashboardService aggregates operational stats for the admin dashboard
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalMissions     int64            `json:"total_missions"`
	MissionsToday     int64            `json:"missions_today"`
	MissionsThisWeek  int64            `json:"missions_this_week"`
	ActiveMissions    int64            `json:"active_missions"`
	CompletedToday    int64            `json:"completed_today"`
	StatusBreakdown   map[string]int64 `json:"status_breakdown"`
	TotalClients      int64            `json:"total_clients"`
	TotalAgents       int64            `json:"total_agents"`
	QuotedVolumeCents int64            `json:"quoted_volume_cents"`
}

// GetStats returns dashboard statistics (admin only)
func (s *DashboardService) GetStats(ctx context.Context, actor domain.Actor) (*DashboardStats, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	stats := &DashboardStats{
		StatusBreakdown: make(map[string]int64),
	}

	todayStart := now.BeginningOfDay()
	todayEnd := now.EndOfDay()
	weekStart := now.BeginningOfWeek()

	db := s.db.WithContext(ctx)

	// Mission counts
	if err := db.Model(&models.Mission{}).Count(&stats.TotalMissions).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Mission{}).
		Where("scheduled_at BETWEEN ? AND ?", todayStart, todayEnd).
		Count(&stats.MissionsToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Mission{}).
		Where("scheduled_at >= ?", weekStart).
		Count(&stats.MissionsThisWeek).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Mission{}).
		Where("status NOT IN ?", []string{
			string(domain.StatusScheduled),
			string(domain.StatusComplete),
			string(domain.StatusCancelled),
		}).
		Count(&stats.ActiveMissions).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Mission{}).
		Where("status = ? AND updated_at BETWEEN ? AND ?", string(domain.StatusComplete), todayStart, todayEnd).
		Count(&stats.CompletedToday).Error; err != nil {
		return nil, err
	}

	// Per-status breakdown
	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Mission{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.StatusBreakdown[row.Status] = row.Count
	}

	// User counts
	if err := db.Model(&models.User{}).
		Where("role = ?", string(domain.RoleClient)).
		Count(&stats.TotalClients).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).
		Where("role = ?", string(domain.RoleAgent)).
		Count(&stats.TotalAgents).Error; err != nil {
		return nil, err
	}

	// Quoted volume across non-cancelled missions
	var volume struct{ Total int64 }
	if err := db.Model(&models.Mission{}).
		Select("COALESCE(SUM(quoted_price), 0) as total").
		Where("quoted_price IS NOT NULL AND status != ?", string(domain.StatusCancelled)).
		Scan(&volume).Error; err != nil {
		return nil, err
	}
	stats.QuotedVolumeCents = volume.Total

	return stats, nil
}
