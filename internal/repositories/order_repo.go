package repositories

import "storefront/internal/models"

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByUser(userID string) ([]models.Order, error)
	// Create persists the order together with its items and address in a
	// single transaction. Either everything is written or nothing is.
	Create(order *models.Order) error
	UpdateStatus(id string, status string) error
	Delete(id string) error
}
