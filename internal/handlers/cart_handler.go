package handlers

import (
	"errors"
	"log"

	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the shopping cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app. All of them
// require authentication.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleViewCart)
	cartRoutes.Post("/items/:productID", h.HandleAddItem)
	cartRoutes.Delete("/items/:productID", h.HandleRemoveOne)
	cartRoutes.Post("/checkout", h.HandleBeginCheckout)
}

// HandleViewCart returns the aggregated cart contents.
func (h *CartHandler) HandleViewCart(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	view, err := h.service.View(userID)
	if err != nil {
		log.Printf("Error viewing cart for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(view)
}

// HandleAddItem adds one unit of a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	productID := c.Params("productID")

	if err := h.service.AddItem(userID, productID); err != nil {
		log.Printf("Error adding product %s to cart of user %s: %v", productID, userID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "The product does not exist",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add item to cart",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Item added to cart",
	})
}

// HandleRemoveOne removes one unit of a product from the cart. Removing a
// product that is not in the cart is rejected without touching anything.
func (h *CartHandler) HandleRemoveOne(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	productID := c.Params("productID")

	if err := h.service.RemoveOne(userID, productID); err != nil {
		log.Printf("Error removing product %s from cart of user %s: %v", productID, userID, err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "The product is not in the cart",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not remove item from cart",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Item removed from cart",
	})
}

// BeginCheckoutRequest represents the request body for starting checkout.
// Latitude and longitude come raw from the client-side map widget.
type BeginCheckoutRequest struct {
	Address   string  `json:"address" validate:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HandleBeginCheckout snapshots the cart into a pending checkout and clears
// it. The order is created by the subsequent order-creation request.
func (h *CartHandler) HandleBeginCheckout(c *fiber.Ctx) error {
	var req BeginCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	userID := middleware.UserID(c)
	checkout, err := h.service.BeginCheckout(userID, req.Address, req.Latitude, req.Longitude)
	if err != nil {
		log.Printf("Error beginning checkout for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not begin checkout",
			"error":   err.Error(),
		})
	}

	return c.JSON(checkout)
}
