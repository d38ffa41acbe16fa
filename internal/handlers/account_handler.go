package handlers

import (
	"errors"
	"log"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AccountHandler handles HTTP requests for the authenticated user's account
// settings: password, email and saved delivery address.
type AccountHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(authService *services.AuthService) *AccountHandler {
	return &AccountHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the account routes with the Fiber app. All of
// them require authentication.
func (h *AccountHandler) RegisterRoutes(router fiber.Router) {
	accountRoutes := router.Group("/account")
	accountRoutes.Post("/change-password", h.HandleChangePassword)
	accountRoutes.Post("/change-email", h.HandleChangeEmail)
	accountRoutes.Post("/verify-change-email", h.HandleVerifyChangeEmail)
	accountRoutes.Get("/address", h.HandleGetAddress)
	accountRoutes.Put("/address", h.HandleSaveAddress)
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	Password        string `json:"password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// HandleChangePassword replaces the caller's password.
func (h *AccountHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
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
	err := h.authService.ChangePassword(userID, req.Password, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		log.Printf("Error changing password for user %s: %v", userID, err)
		switch {
		case errors.Is(err, services.ErrPasswordMismatch):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Confirm passwords are not same",
			})
		case errors.Is(err, services.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Current password is incorrect",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not change password",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Password changed successfully",
	})
}

// ChangeEmailRequest represents the request body for starting an email
// change.
type ChangeEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleChangeEmail issues a verification code to the new address.
func (h *AccountHandler) HandleChangeEmail(c *fiber.Ctx) error {
	var req ChangeEmailRequest
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
	if err := h.authService.RequestEmailChange(userID, req.Email); err != nil {
		log.Printf("Error requesting email change for user %s: %v", userID, err)
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Email address already in use",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not send verification code",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Verification code sent to the new address",
	})
}

// VerifyChangeEmailRequest represents the request body for finishing an
// email change.
type VerifyChangeEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// HandleVerifyChangeEmail validates the code and updates the email.
func (h *AccountHandler) HandleVerifyChangeEmail(c *fiber.Ctx) error {
	var req VerifyChangeEmailRequest
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
	err := h.authService.ConfirmEmailChange(userID, req.Email, req.Code)
	if err != nil {
		log.Printf("Error verifying email change for user %s: %v", userID, err)
		switch {
		case errors.Is(err, services.ErrInvalidCode):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid code",
			})
		case errors.Is(err, services.ErrCodeExpired):
			return c.Status(fiber.StatusGone).JSON(fiber.Map{
				"message": "Code has expired",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not change email",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Email change successful",
	})
}

// HandleGetAddress returns the caller's saved delivery address.
func (h *AccountHandler) HandleGetAddress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	address, err := h.authService.GetAddress(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "No saved address",
			})
		}
		log.Printf("Error getting address for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve address",
			"error":   err.Error(),
		})
	}
	return c.JSON(address)
}

// SaveAddressRequest represents the request body for saving an address.
type SaveAddressRequest struct {
	Address   string  `json:"address" validate:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HandleSaveAddress creates or replaces the caller's saved address.
func (h *AccountHandler) HandleSaveAddress(c *fiber.Ctx) error {
	var req SaveAddressRequest
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
	address := &models.UserAddress{
		UserID:    userID,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.authService.SaveAddress(address); err != nil {
		log.Printf("Error saving address for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not save address",
			"error":   err.Error(),
		})
	}

	return c.JSON(address)
}
