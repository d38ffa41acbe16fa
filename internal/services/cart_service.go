package services

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CartService handles business logic for the shopping cart: adding and
// removing units, the aggregated view, and the snapshot taken when checkout
// begins.
type CartService struct {
	cartRepo      repositories.CartRepository
	productRepo   repositories.ProductRepository
	checkoutStore repositories.CheckoutStore
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository, checkoutStore repositories.CheckoutStore) *CartService {
	return &CartService{
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		checkoutStore: checkoutStore,
	}
}

// GetOrCreateCart returns the user's cart, creating it on first use. It is
// idempotent and called at the top of every cart-touching flow.
func (s *CartService) GetOrCreateCart(userID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUser(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	cart = &models.Cart{UserID: userID}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

// AddItem appends one unit of the product to the user's cart. Adding the
// same product again adds another unit.
func (s *CartService) AddItem(userID, productID string) error {
	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return err
	}

	if _, err := s.productRepo.GetByID(productID); err != nil {
		return err
	}

	if err := s.cartRepo.AddItem(cart.ID, productID); err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}
	return nil
}

// RemoveOne removes a single unit of the product from the user's cart.
// When the cart holds no such unit the cart is left unchanged and
// repositories.ErrNotFound is returned.
func (s *CartService) RemoveOne(userID, productID string) error {
	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return err
	}
	return s.cartRepo.RemoveOneItem(cart.ID, productID)
}

// View returns the aggregated contents of the user's cart: units grouped by
// product with per-line and overall totals.
func (s *CartService) View(userID string) (*models.CartView, error) {
	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	counts, err := s.countByProduct(cart.ID)
	if err != nil {
		return nil, err
	}

	view := &models.CartView{Lines: []models.CartLine{}}
	for productID, count := range counts {
		product, err := s.productRepo.GetByID(productID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				// The product was removed from the catalog while sitting in
				// the cart; its units no longer contribute to the view.
				log.Printf("Skipping vanished product %s in cart %s", productID, cart.ID)
				continue
			}
			return nil, err
		}
		view.Lines = append(view.Lines, models.CartLine{
			Product:   *product,
			LineCount: count,
			UnitPrice: product.Price,
			LineTotal: product.Price * float64(count),
		})
		view.TotalItems += count
		view.TotalPrice += product.Price * float64(count)
	}

	sort.Slice(view.Lines, func(i, j int) bool {
		return view.Lines[i].Product.Name < view.Lines[j].Product.Name
	})
	return view, nil
}

// BeginCheckout freezes the current cart contents into a PendingCheckout,
// clears the cart and stores the snapshot keyed by user. The order itself is
// created later by OrderService.CommitCheckout.
func (s *CartService) BeginCheckout(userID, address string, latitude, longitude float64) (*models.PendingCheckout, error) {
	cart, err := s.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}

	counts, err := s.countByProduct(cart.ID)
	if err != nil {
		return nil, err
	}

	checkout := &models.PendingCheckout{
		Quantities: counts,
		Address:    address,
		Latitude:   latitude,
		Longitude:  longitude,
	}
	if err := s.checkoutStore.Save(userID, checkout); err != nil {
		return nil, fmt.Errorf("failed to store pending checkout: %w", err)
	}

	if err := s.cartRepo.ClearItems(cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	return checkout, nil
}

// countByProduct groups the cart's unit rows into product quantities.
func (s *CartService) countByProduct(cartID string) (map[string]int, error) {
	items, err := s.cartRepo.GetItems(cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	counts := make(map[string]int, len(items))
	for _, item := range items {
		counts[item.ProductID]++
	}
	return counts, nil
}
