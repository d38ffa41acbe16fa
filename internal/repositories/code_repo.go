package repositories

import "storefront/internal/models"

// CodeRepository defines the interface for verification code data access.
// Codes are append-only; expiry is decided by the caller at check time.
type CodeRepository interface {
	Create(code *models.VerificationCode) error
	// FindByCodeAndUser returns the newest code matching both the submitted
	// value and the owning user, or ErrNotFound.
	FindByCodeAndUser(code, userID string) (*models.VerificationCode, error)
}
