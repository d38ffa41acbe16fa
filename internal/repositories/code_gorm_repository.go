package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
)

// GORMCodeRepository is a GORM implementation of CodeRepository.
type GORMCodeRepository struct {
	db *gorm.DB
}

// NewGORMCodeRepository creates a new instance of GORMCodeRepository.
func NewGORMCodeRepository(db *gorm.DB) *GORMCodeRepository {
	return &GORMCodeRepository{
		db: db,
	}
}

// Create persists a new verification code.
func (r *GORMCodeRepository) Create(code *models.VerificationCode) error {
	if err := r.db.Create(code).Error; err != nil {
		return fmt.Errorf("failed to create verification code: %w", err)
	}
	return nil
}

// FindByCodeAndUser returns the newest code matching value and owner.
func (r *GORMCodeRepository) FindByCodeAndUser(code, userID string) (*models.VerificationCode, error) {
	var record models.VerificationCode
	err := r.db.Order("created_at DESC").
		First(&record, "code = ? AND user_id = ?", code, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("verification code for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up verification code for user %s: %w", userID, err)
	}
	return &record, nil
}
