package services_test

import (
	"errors"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
)

func newCartFixture(t *testing.T) (*services.CartService, *repositories.MockProductRepository, *repositories.MockCheckoutStore) {
	t.Helper()
	productRepo := repositories.NewMockProductRepository()
	cartRepo := repositories.NewMockCartRepository()
	checkoutStore := repositories.NewMockCheckoutStore()
	return services.NewCartService(cartRepo, productRepo, checkoutStore), productRepo, checkoutStore
}

func TestCartService_GetOrCreateCart(t *testing.T) {
	service, _, _ := newCartFixture(t)

	first, err := service.GetOrCreateCart("user-1")
	assert.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	// A second call must return the same cart, not create another.
	second, err := service.GetOrCreateCart("user-1")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCartService_AddAndView(t *testing.T) {
	service, productRepo, _ := newCartFixture(t)

	product := &models.Product{ID: "prod-1", Name: "Keyboard", Price: 75.0}
	assert.NoError(t, productRepo.Create(product))

	// Adding the same product N times yields one line with count N.
	for i := 0; i < 3; i++ {
		assert.NoError(t, service.AddItem("user-1", "prod-1"))
	}

	view, err := service.View("user-1")
	assert.NoError(t, err)
	assert.Len(t, view.Lines, 1)
	assert.Equal(t, 3, view.Lines[0].LineCount)
	assert.Equal(t, 75.0, view.Lines[0].UnitPrice)
	assert.Equal(t, 225.0, view.Lines[0].LineTotal)
	assert.Equal(t, 3, view.TotalItems)
	assert.Equal(t, 225.0, view.TotalPrice)
}

func TestCartService_AddUnknownProduct(t *testing.T) {
	service, _, _ := newCartFixture(t)

	err := service.AddItem("user-1", "missing")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	view, err := service.View("user-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, view.TotalItems)
}

func TestCartService_RemoveOne(t *testing.T) {
	service, productRepo, _ := newCartFixture(t)

	product := &models.Product{ID: "prod-1", Name: "Mouse", Price: 25.0}
	assert.NoError(t, productRepo.Create(product))

	assert.NoError(t, service.AddItem("user-1", "prod-1"))
	assert.NoError(t, service.AddItem("user-1", "prod-1"))
	assert.NoError(t, service.RemoveOne("user-1", "prod-1"))

	view, err := service.View("user-1")
	assert.NoError(t, err)
	assert.Len(t, view.Lines, 1)
	assert.Equal(t, 1, view.Lines[0].LineCount)
	assert.Equal(t, 25.0, view.TotalPrice)
}

func TestCartService_RemoveOneFromEmptyCart(t *testing.T) {
	service, productRepo, _ := newCartFixture(t)

	product := &models.Product{ID: "prod-1", Name: "Mouse", Price: 25.0}
	assert.NoError(t, productRepo.Create(product))

	// Removing a unit that is not there must not touch anything.
	err := service.RemoveOne("user-1", "prod-1")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	view, err := service.View("user-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, view.TotalItems)
	assert.Equal(t, 0.0, view.TotalPrice)
}

func TestCartService_ViewSkipsVanishedProduct(t *testing.T) {
	service, productRepo, _ := newCartFixture(t)

	product := &models.Product{ID: "prod-1", Name: "Laptop", Price: 1200.0}
	assert.NoError(t, productRepo.Create(product))
	assert.NoError(t, service.AddItem("user-1", "prod-1"))
	assert.NoError(t, productRepo.Delete("prod-1"))

	view, err := service.View("user-1")
	assert.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Equal(t, 0, view.TotalItems)
}

func TestCartService_BeginCheckout(t *testing.T) {
	service, productRepo, checkoutStore := newCartFixture(t)

	assert.NoError(t, productRepo.Create(&models.Product{ID: "prod-1", Name: "Keyboard", Price: 75.0}))
	assert.NoError(t, productRepo.Create(&models.Product{ID: "prod-2", Name: "Mouse", Price: 25.0}))

	assert.NoError(t, service.AddItem("user-1", "prod-1"))
	assert.NoError(t, service.AddItem("user-1", "prod-1"))
	assert.NoError(t, service.AddItem("user-1", "prod-2"))

	checkout, err := service.BeginCheckout("user-1", "1 Main Street", 41.31, 69.24)
	assert.NoError(t, err)
	assert.Equal(t, map[string]int{"prod-1": 2, "prod-2": 1}, checkout.Quantities)
	assert.Equal(t, "1 Main Street", checkout.Address)

	// The snapshot is stored and the cart is cleared.
	stored, err := checkoutStore.Get("user-1")
	assert.NoError(t, err)
	assert.Equal(t, checkout.Quantities, stored.Quantities)

	view, err := service.View("user-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, view.TotalItems)
}
