package repositories

import (
	"fmt"
	"sync"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts  map[string]models.Cart // keyed by cart ID
	items  map[string][]models.CartItem
	nextID uint
	mu     sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
		items: make(map[string][]models.CartItem),
	}
}

// GetByUser returns the cart owned by a user.
func (r *MockCartRepository) GetByUser(userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.carts {
		if c.UserID == userID {
			cart := c
			return &cart, nil
		}
	}
	return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
}

// Create adds a new cart.
func (r *MockCartRepository) Create(cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	r.carts[cart.ID] = *cart
	return nil
}

// AddItem appends one item row to the cart.
func (r *MockCartRepository) AddItem(cartID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.items[cartID] = append(r.items[cartID], models.CartItem{
		ID:        r.nextID,
		CartID:    cartID,
		ProductID: productID,
	})
	return nil
}

// RemoveOneItem deletes a single item row matching the product, if any.
func (r *MockCartRepository) RemoveOneItem(cartID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.items[cartID]
	for i, item := range items {
		if item.ProductID == productID {
			r.items[cartID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("item %s in cart %s: %w", productID, cartID, ErrNotFound)
}

// GetItems returns all item rows of a cart.
func (r *MockCartRepository) GetItems(cartID string) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]models.CartItem, len(r.items[cartID]))
	copy(items, r.items[cartID])
	return items, nil
}

// ClearItems deletes every item row of a cart.
func (r *MockCartRepository) ClearItems(cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, cartID)
	return nil
}
