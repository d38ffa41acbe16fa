package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"
)

// OrderService handles business logic related to orders: converting a
// pending checkout into an order and managing the order lifecycle.
type OrderService struct {
	orderRepo     repositories.OrderRepository
	productRepo   repositories.ProductRepository
	checkoutStore repositories.CheckoutStore
	mqClient      *rabbitmq.Client
}

// NewOrderService creates a new OrderService. mqClient may be nil; event
// publication is then skipped.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, checkoutStore repositories.CheckoutStore, mqClient *rabbitmq.Client) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		checkoutStore: checkoutStore,
		mqClient:      mqClient,
	}
}

// CommitCheckout converts the user's pending checkout into an order. An
// absent or empty snapshot yields ErrEmptyCart and creates nothing. Every
// product is resolved before anything is written, so a vanished product
// aborts the commit with no partial order. Unit prices are frozen at this
// point.
func (s *OrderService) CommitCheckout(userID string) (*models.Order, error) {
	checkout, err := s.checkoutStore.Get(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, fmt.Errorf("failed to load pending checkout: %w", err)
	}
	if len(checkout.Quantities) == 0 {
		return nil, ErrEmptyCart
	}

	var totalAmount float64
	var items []models.OrderItem
	for productID, quantity := range checkout.Quantities {
		product, err := s.productRepo.GetByID(productID)
		if err != nil {
			return nil, fmt.Errorf("product %s no longer available: %w", productID, err)
		}
		items = append(items, models.OrderItem{
			ProductID: productID,
			Quantity:  quantity,
			Price:     product.Price,
		})
		totalAmount += product.Price * float64(quantity)
	}

	newOrder := &models.Order{
		UserID: userID,
		Items:  items,
		Address: models.OrderAddress{
			Address:   checkout.Address,
			Latitude:  checkout.Latitude,
			Longitude: checkout.Longitude,
		},
		TotalAmount: totalAmount,
		Status:      models.StatusOrdered,
	}

	if err := s.orderRepo.Create(newOrder); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	// The snapshot is consumed; a double submit now fails with ErrEmptyCart.
	if err := s.checkoutStore.Delete(userID); err != nil {
		log.Printf("Warning: failed to clear pending checkout for user %s: %v", userID, err)
	}

	s.publishOrderCreated(newOrder)

	return newOrder, nil
}

// GetAllOrders retrieves all orders (operator view), newest first.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrdersByUser retrieves the orders of one user, newest first.
func (s *OrderService) GetOrdersByUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUser(userID)
}

// SetStatus overwrites the status of an order owned by the user. Membership
// in the status vocabulary is validated; transitions are not, so any status
// may follow any other, backward included.
func (s *OrderService) SetStatus(orderID, userID, status string) error {
	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	// Ownership failures read as NotFound so order IDs of other users are
	// not probeable.
	if order.UserID != userID {
		return fmt.Errorf("order with ID %s: %w", orderID, repositories.ErrNotFound)
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", orderID, err)
	}
	return nil
}

// Cancel sets the order's status to canceled, with the same ownership rule
// as SetStatus. Canceled is reachable from any state.
func (s *OrderService) Cancel(orderID, userID string) error {
	return s.SetStatus(orderID, userID, models.StatusCanceled)
}

// Delete hard-deletes an order. Ownership is not checked here; the route is
// operator-only.
func (s *OrderService) Delete(orderID string) error {
	return s.orderRepo.Delete(orderID)
}

// publishOrderCreated emits an order.created event. Publish failures are
// logged and dropped; the order exists regardless.
func (s *OrderService) publishOrderCreated(order *models.Order) {
	if s.mqClient == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}

	event := map[string]interface{}{
		"orderID": order.ID,
		"userID":  order.UserID,
		"status":  order.Status,
		"total":   order.TotalAmount,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal order event to JSON: %v", err)
		return
	}
	if err := s.mqClient.Publish("order.created", body); err != nil {
		log.Printf("Warning: Failed to publish order created event for order %s: %v", order.ID, err)
	} else {
		log.Printf("Successfully published order created event for order %s", order.ID)
	}
}
