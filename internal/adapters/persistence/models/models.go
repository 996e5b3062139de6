package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Identity & Session Tables
// ============================================================

// User represents users table. Identity itself lives at the external
// provider; this row is the synced projection keyed on ExternalID.
type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ExternalID         string    `gorm:"uniqueIndex;size:100;not null" json:"external_id"`
	Email              string    `gorm:"size:100;not null" json:"email"`
	Name               string    `gorm:"size:100;not null" json:"name"`
	Role               string    `gorm:"size:20;not null" json:"role"`
	CompanyName        *string   `gorm:"size:100" json:"company_name,omitempty"`
	Phone              *string   `gorm:"size:20" json:"phone,omitempty"`
	OnboardingComplete bool      `gorm:"default:false" json:"onboarding_complete"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID                 uint      `json:"id"`
	ExternalID         string    `json:"external_id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	CompanyName        *string   `json:"company_name,omitempty"`
	Phone              *string   `json:"phone,omitempty"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:                 u.ID,
		ExternalID:         u.ExternalID,
		Email:              u.Email,
		Name:               u.Name,
		Role:               u.Role,
		CompanyName:        u.CompanyName,
		Phone:              u.Phone,
		OnboardingComplete: u.OnboardingComplete,
		CreatedAt:          u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Mission{},
		&MissionAttachment{},
		&MissionEvent{},
		&LocationLog{},
		&RateCard{},
	)
}
