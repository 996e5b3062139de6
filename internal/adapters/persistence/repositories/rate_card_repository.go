package repositories

import (
	"context"
	"errors"

	"greetops/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// rateCardRepository implements RateCardRepository interface
type rateCardRepository struct {
	db *gorm.DB
}

// NewRateCardRepository creates a new rate card repository
func NewRateCardRepository(db *gorm.DB) RateCardRepository {
	return &rateCardRepository{db: db}
}

// Create creates a new rate card
func (r *rateCardRepository) Create(ctx context.Context, card *models.RateCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// GetByID gets a rate card by ID
func (r *rateCardRepository) GetByID(ctx context.Context, id uint) (*models.RateCard, error) {
	var card models.RateCard
	err := r.db.WithContext(ctx).First(&card, id).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// Update saves a rate card
func (r *rateCardRepository) Update(ctx context.Context, card *models.RateCard) error {
	return r.db.WithContext(ctx).Save(card).Error
}

// Delete hard-deletes a rate card
func (r *rateCardRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.RateCard{}, id).Error
}

// List lists all rate cards (admin view)
func (r *rateCardRepository) List(ctx context.Context) ([]*models.RateCard, error) {
	var cards []*models.RateCard
	err := r.db.WithContext(ctx).Order("id ASC").Find(&cards).Error
	return cards, err
}

// ListDefaults lists active platform-default rate cards (client_id IS NULL)
func (r *rateCardRepository) ListDefaults(ctx context.Context) ([]*models.RateCard, error) {
	var cards []*models.RateCard
	err := r.db.WithContext(ctx).
		Where("client_id IS NULL").
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&cards).Error
	return cards, err
}

// ListByClient lists a client's active custom rate cards
func (r *rateCardRepository) ListByClient(ctx context.Context, clientID uint) ([]*models.RateCard, error) {
	var cards []*models.RateCard
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&cards).Error
	return cards, err
}

// FindActive finds the active rule for exactly (clientID, serviceType,
// locationType); clientID nil matches platform defaults. Returns (nil, nil)
// when no rule matches.
func (r *rateCardRepository) FindActive(ctx context.Context, clientID *uint, serviceType, locationType string) (*models.RateCard, error) {
	q := r.db.WithContext(ctx).
		Where("service_type = ?", serviceType).
		Where("location_type = ?", locationType).
		Where("is_active = ?", true)

	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	} else {
		q = q.Where("client_id IS NULL")
	}

	var card models.RateCard
	err := q.Order("id ASC").First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// Count counts all rate cards
func (r *rateCardRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RateCard{}).Count(&count).Error
	return count, err
}
