package repositories

import (
	"fmt"
	"sync"

	"storefront/internal/models"
)

// MockCodeRepository is an in-memory implementation of CodeRepository.
type MockCodeRepository struct {
	codes  []models.VerificationCode
	nextID uint
	mu     sync.RWMutex
}

// NewMockCodeRepository creates a new instance of MockCodeRepository.
func NewMockCodeRepository() *MockCodeRepository {
	return &MockCodeRepository{}
}

// Create appends a new verification code.
func (r *MockCodeRepository) Create(code *models.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	code.ID = r.nextID
	r.codes = append(r.codes, *code)
	return nil
}

// FindByCodeAndUser returns the newest code matching value and owner.
func (r *MockCodeRepository) FindByCodeAndUser(code, userID string) (*models.VerificationCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.codes) - 1; i >= 0; i-- {
		if r.codes[i].Code == code && r.codes[i].UserID == userID {
			record := r.codes[i]
			return &record, nil
		}
	}
	return nil, fmt.Errorf("verification code for user %s: %w", userID, ErrNotFound)
}
