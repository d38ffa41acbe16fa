package repositories

import (
	"fmt"
	"sync"

	"storefront/internal/models"
)

// MockCheckoutStore is an in-memory implementation of CheckoutStore.
type MockCheckoutStore struct {
	checkouts map[string]models.PendingCheckout
	mu        sync.RWMutex
}

// NewMockCheckoutStore creates a new instance of MockCheckoutStore.
func NewMockCheckoutStore() *MockCheckoutStore {
	return &MockCheckoutStore{
		checkouts: make(map[string]models.PendingCheckout),
	}
}

// Save stores the pending checkout of a user, replacing any previous one.
func (s *MockCheckoutStore) Save(userID string, checkout *models.PendingCheckout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkouts[userID] = *checkout
	return nil
}

// Get returns the pending checkout of a user.
func (s *MockCheckoutStore) Get(userID string) (*models.PendingCheckout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checkout, ok := s.checkouts[userID]
	if !ok {
		return nil, fmt.Errorf("pending checkout for user %s: %w", userID, ErrNotFound)
	}
	return &checkout, nil
}

// Delete discards the pending checkout of a user.
func (s *MockCheckoutStore) Delete(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.checkouts, userID)
	return nil
}
