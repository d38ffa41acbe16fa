package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUser retrieves the cart owned by a user.
func (r *GORMCartRepository) GetByUser(userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.First(&cart, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// Create creates a new cart.
func (r *GORMCartRepository) Create(cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if err := r.db.Create(cart).Error; err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// AddItem appends one item row to the cart.
func (r *GORMCartRepository) AddItem(cartID, productID string) error {
	item := models.CartItem{CartID: cartID, ProductID: productID}
	if err := r.db.Create(&item).Error; err != nil {
		return fmt.Errorf("failed to add item to cart %s: %w", cartID, err)
	}
	return nil
}

// RemoveOneItem deletes a single item row matching the product, if any.
func (r *GORMCartRepository) RemoveOneItem(cartID, productID string) error {
	var item models.CartItem
	err := r.db.First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("item %s in cart %s: %w", productID, cartID, ErrNotFound)
		}
		return fmt.Errorf("failed to find item %s in cart %s: %w", productID, cartID, err)
	}
	if err := r.db.Delete(&item).Error; err != nil {
		return fmt.Errorf("failed to remove item %s from cart %s: %w", productID, cartID, err)
	}
	return nil
}

// GetItems retrieves all item rows of a cart.
func (r *GORMCartRepository) GetItems(cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Find(&items, "cart_id = ?", cartID).Error; err != nil {
		return nil, fmt.Errorf("failed to get items of cart %s: %w", cartID, err)
	}
	return items, nil
}

// ClearItems deletes every item row of a cart.
func (r *GORMCartRepository) ClearItems(cartID string) error {
	if err := r.db.Delete(&models.CartItem{}, "cart_id = ?", cartID).Error; err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", cartID, err)
	}
	return nil
}
