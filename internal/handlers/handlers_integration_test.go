package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// nopSender drops outgoing mail; the integration tests only care about the
// HTTP surface.
type nopSender struct{}

func (nopSender) Send(to, subject, htmlBody string) error { return nil }

// setupApp builds a Fiber app backed by a fresh in-memory SQLite database
// with all handlers and services wired, no broker and no real SMTP.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.UserAddress{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderAddress{},
		&models.VerificationCode{},
	)
	if err != nil {
		t.Fatalf("failed to auto-migrate database: %v", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	codeRepo := repositories.NewGORMCodeRepository(db)
	checkoutStore := repositories.NewMockCheckoutStore()

	verificationService := services.NewVerificationService(codeRepo, nopSender{}, 35*time.Second)
	authService := services.NewAuthService(userRepo, verificationService, "test_jwt_secret")
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(cartRepo, productRepo, checkoutStore)
	orderService := services.NewOrderService(orderRepo, productRepo, checkoutStore, nil) // nil for RabbitMQ client

	authHandler := handlers.NewAuthHandler(authService, nil)
	accountHandler := handlers.NewAccountHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	authHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	accountHandler.RegisterRoutes(protectedRoutes)
	productHandler.RegisterRoutes(protectedRoutes)
	cartHandler.RegisterRoutes(protectedRoutes)
	orderHandler.RegisterRoutes(protectedRoutes)

	return app
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)

	payload := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	if len(raw) > 0 {
		// Some endpoints return arrays; those tests decode raw themselves.
		_ = json.Unmarshal(raw, &payload)
	}
	resp.Body.Close()
	return resp, payload
}

func registerAndLogin(t *testing.T, app *fiber.App, username, email string) string {
	t.Helper()

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, payload := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := payload["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	token := registerAndLogin(t, app, "testuser", "test@example.com")
	assert.NotEmpty(t, token)

	// Duplicate registration conflicts.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Bad credentials are rejected.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterIgnoresClientSuppliedID(t *testing.T) {
	app := setupApp(t)

	resp, payload := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"id":       "attacker-chosen-id",
		"username": "idsetter",
		"email":    "idsetter@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	user, _ := payload["user"].(map[string]interface{})
	assert.NotEmpty(t, user["id"])
	assert.NotEqual(t, "attacker-chosen-id", user["id"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/cart/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/orders/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func createProduct(t *testing.T, app *fiber.App, token, name string, price float64) string {
	t.Helper()
	resp, payload := doJSON(t, app, http.MethodPost, "/api/v1/products/", token, map[string]interface{}{
		"name":        name,
		"description": "integration test product",
		"price":       price,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := payload["id"].(string)
	assert.NotEmpty(t, id)
	return id
}

func TestCartCheckoutOrderFlow(t *testing.T) {
	app := setupApp(t)
	token := registerAndLogin(t, app, "shopper", "shopper@example.com")

	productID := createProduct(t, app, token, "Mechanical Keyboard", 75.0)

	// Two units of the same product.
	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/cart/items/"+productID, token, nil)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, payload := doJSON(t, app, http.MethodGet, "/api/v1/cart/", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), payload["total_items"])
	assert.Equal(t, 150.0, payload["total_price"])

	// Freeze the cart into a pending checkout.
	resp, payload = doJSON(t, app, http.MethodPost, "/api/v1/cart/checkout", token, map[string]interface{}{
		"address":   "1 Main Street",
		"latitude":  41.31,
		"longitude": 69.24,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	quantities, _ := payload["quantities"].(map[string]interface{})
	assert.Equal(t, float64(2), quantities[productID])

	// The cart is already cleared.
	resp, payload = doJSON(t, app, http.MethodGet, "/api/v1/cart/", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), payload["total_items"])

	// Create the order from the snapshot.
	resp, payload = doJSON(t, app, http.MethodPost, "/api/v1/orders/", token, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID, _ := payload["id"].(string)
	assert.NotEmpty(t, orderID)
	assert.Equal(t, models.StatusOrdered, payload["status"])
	assert.Equal(t, 150.0, payload["total_amount"])

	// The snapshot is consumed: a double submit is an empty cart.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders/", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Status moves are unconstrained, forward and backward.
	resp, _ = doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", token, map[string]string{
		"status": models.StatusShipped,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", token, map[string]string{
		"status": models.StatusOrdered,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// A status outside the vocabulary is rejected.
	resp, _ = doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", token, map[string]string{
		"status": "teleported",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Cancel and confirm through the listing.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/cancel", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := app.Test(req, -1)
	assert.NoError(t, err)
	var orders []models.Order
	assert.NoError(t, json.NewDecoder(listResp.Body).Decode(&orders))
	listResp.Body.Close()
	assert.Len(t, orders, 1)
	assert.Equal(t, models.StatusCanceled, orders[0].Status)
	assert.Len(t, orders[0].Items, 1)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)
	assert.Equal(t, "1 Main Street", orders[0].Address.Address)
}

func TestRemoveFromEmptyCart(t *testing.T) {
	app := setupApp(t)
	token := registerAndLogin(t, app, "remover", "remover@example.com")

	productID := createProduct(t, app, token, "Wireless Mouse", 25.0)

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/v1/cart/items/"+productID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The cart is still empty and intact.
	resp, payload := doJSON(t, app, http.MethodGet, "/api/v1/cart/", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), payload["total_items"])
}

func TestAddUnknownProductToCart(t *testing.T) {
	app := setupApp(t)
	token := registerAndLogin(t, app, "ghost", "ghost@example.com")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/cart/items/no-such-product", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSavedAddressRoundTrip(t *testing.T) {
	app := setupApp(t)
	token := registerAndLogin(t, app, "resident", "resident@example.com")

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/account/address", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPut, "/api/v1/account/address", token, map[string]interface{}{
		"address":   "1 Main Street",
		"latitude":  41.31,
		"longitude": 69.24,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, payload := doJSON(t, app, http.MethodGet, "/api/v1/account/address", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1 Main Street", payload["address"])
}

func TestChangeEmailToTakenAddress(t *testing.T) {
	app := setupApp(t)
	token := registerAndLogin(t, app, "firstuser", "first@example.com")
	registerAndLogin(t, app, "seconduser", "second@example.com")

	resp, payload := doJSON(t, app, http.MethodPost, "/api/v1/account/change-email", token, map[string]string{
		"email": "second@example.com",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Email address already in use", payload["message"])
}

func TestChangePasswordEndpoint(t *testing.T) {
	app := setupApp(t)
	token := registerAndLogin(t, app, "rotator", "rotator@example.com")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/account/change-password", token, map[string]string{
		"password":         "password123",
		"new_password":     "newpassword",
		"confirm_password": "different",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/account/change-password", token, map[string]string{
		"password":         "password123",
		"new_password":     "newpassword",
		"confirm_password": "newpassword",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "rotator",
		"password": "newpassword",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
