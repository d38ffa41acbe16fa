package repositories

import "storefront/internal/models"

// CheckoutStore holds the session-scoped pending checkout of each user: the
// snapshot taken when checkout begins, consumed when the order is created.
// One pending checkout per user.
type CheckoutStore interface {
	Save(userID string, checkout *models.PendingCheckout) error
	// Get returns the pending checkout of a user, or ErrNotFound.
	Get(userID string) (*models.PendingCheckout, error)
	Delete(userID string) error
}
