package repositories

import "storefront/internal/models"

// CartRepository defines the interface for cart data access. A cart holds
// one CartItem row per unit of a product.
type CartRepository interface {
	GetByUser(userID string) (*models.Cart, error)
	Create(cart *models.Cart) error
	AddItem(cartID, productID string) error
	// RemoveOneItem deletes at most one item row matching the product.
	// Returns ErrNotFound when the cart holds no such row.
	RemoveOneItem(cartID, productID string) error
	GetItems(cartID string) ([]models.CartItem, error)
	ClearItems(cartID string) error
}
