package services

import (
	"context"
	"errors"
	"log"

	"greetops/internal/adapters/persistence/models"
	"greetops/internal/adapters/persistence/repositories"
	"greetops/internal/config"
	"greetops/internal/core/domain"
	"greetops/internal/pkg/jwt"
	"greetops/internal/pkg/secrets"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrInvalidWebhookSecret = errors.New("invalid webhook secret")
	ErrInvalidRole          = errors.New("invalid role claim")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenRevoked         = errors.New("token revoked")
	ErrUserNotFound         = errors.New("user not found")
)

// AuthService bridges the external identity provider and internal sessions.
// The provider authenticates; this service syncs the user projection and
// issues the JWT pair used against the API.
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
	}
}

// SyncInput is the payload the identity provider posts at sign-in
type SyncInput struct {
	ExternalID string `json:"external_id" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required"`
	Role       string `json:"role" validate:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// VerifyWebhookSecret compares the shared secret presented by the identity
// provider against its configured bcrypt hash
func (s *AuthService) VerifyWebhookSecret(secret string) error {
	if s.cfg.Webhook.SecretHash == "" || !secrets.Verify(secret, s.cfg.Webhook.SecretHash) {
		return ErrInvalidWebhookSecret
	}
	return nil
}

// Sync upserts the user projection keyed on ExternalID and issues a session.
// Idempotent: repeated syncs refresh email/name but never change the role of
// an existing user.
func (s *AuthService) Sync(ctx context.Context, input *SyncInput) (*AuthResponse, error) {
	if !domain.Role(input.Role).IsValid() {
		return nil, ErrInvalidRole
	}

	// 1. Upsert keyed on external ID
	user, err := s.userRepo.GetByExternalID(ctx, input.ExternalID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = &models.User{
			ExternalID:         input.ExternalID,
			Email:              input.Email,
			Name:               input.Name,
			Role:               input.Role,
			OnboardingComplete: false,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		log.Printf("✅ User synced (new): %s [%s]", user.ExternalID, user.Role)
	} else {
		user.Email = input.Email
		user.Name = input.Name
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	// 2. Issue the session pair
	return s.issueSession(ctx, user)
}

// Refresh rotates a refresh token and returns a new session pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	stored, err := s.refreshTokenRepo.GetByTokenHash(ctx, secrets.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, err
	}
	if stored.IsExpired() {
		return nil, ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// Rotate: revoke the presented token before issuing the next one
	if err := s.refreshTokenRepo.Revoke(ctx, stored.ID); err != nil {
		return nil, err
	}

	return s.issueSession(ctx, user)
}

// Logout revokes the presented refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.refreshTokenRepo.RevokeByTokenHash(ctx, secrets.HashToken(refreshToken))
}

// Me returns the current user
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*AuthResponse, error) {
	accessToken, err := jwt.GenerateAccessToken(user.ID, user.ExternalID, user.Role, s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()
	refreshToken, err := jwt.GenerateRefreshToken(user.ID, tokenID, s.cfg.JWT.RefreshSecret, s.cfg.JWT.RefreshTokenDays)
	if err != nil {
		return nil, err
	}

	record := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: secrets.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	if err := s.refreshTokenRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
