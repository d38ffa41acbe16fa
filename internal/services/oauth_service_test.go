package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

// stubProvider is an httptest server standing in for the OAuth provider: it
// answers the token exchange and serves a fixed userinfo document.
func stubProvider(t *testing.T, userInfoStatus int, info map[string]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"stub-access-token","token_type":"bearer"}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(userInfoStatus)
		_ = json.NewEncoder(w).Encode(info)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newOAuthFixture(t *testing.T, userInfoStatus int, info map[string]string) (*services.OAuthService, *repositories.MockUserRepository) {
	t.Helper()

	authService, userRepo, _ := newAuthFixture(t)
	server := stubProvider(t, userInfoStatus, info)

	service := services.NewOAuthService(userRepo, authService, services.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  server.URL + "/auth",
			TokenURL: server.URL + "/token",
		},
		UserInfoURL: server.URL + "/userinfo",
	})
	return service, userRepo
}

func TestOAuthService_CallbackLinksKnownEmail(t *testing.T) {
	service, userRepo := newOAuthFixture(t, http.StatusOK, map[string]string{
		"id":         "google-123",
		"email":      "test@example.com",
		"given_name": "Test",
	})

	existing := &models.User{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "hashed",
	}
	assert.NoError(t, userRepo.Create(existing))

	token, err := service.HandleCallback(context.Background(), "auth-code")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// The existing account gets the external identity; no second account
	// appears for the same email.
	linked, err := userRepo.GetByEmail("test@example.com")
	assert.NoError(t, err)
	assert.Equal(t, existing.ID, linked.ID)
	assert.Equal(t, "google-123", linked.GoogleID)

	_, err = userRepo.GetByUsername("test")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	// The token belongs to the existing account.
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, existing.ID, claims["user_id"])
}

func TestOAuthService_CallbackCreatesAccount(t *testing.T) {
	service, userRepo := newOAuthFixture(t, http.StatusOK, map[string]string{
		"id":         "google-456",
		"email":      "newcomer@example.com",
		"given_name": "New",
	})

	token, err := service.HandleCallback(context.Background(), "auth-code")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	created, err := userRepo.GetByEmail("newcomer@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "newcomer", created.Username)
	assert.Equal(t, "google-456", created.GoogleID)
	assert.NotEmpty(t, created.Password)
}

func TestOAuthService_CallbackUsernameCollision(t *testing.T) {
	service, userRepo := newOAuthFixture(t, http.StatusOK, map[string]string{
		"id":    "google-789",
		"email": "shopper@example.com",
	})

	// Someone unrelated already holds the email's local part as a username.
	assert.NoError(t, userRepo.Create(&models.User{
		Username: "shopper",
		Email:    "other@example.com",
		Password: "hashed",
	}))

	_, err := service.HandleCallback(context.Background(), "auth-code")
	assert.NoError(t, err)

	created, err := userRepo.GetByEmail("shopper@example.com")
	assert.NoError(t, err)
	assert.NotEqual(t, "shopper", created.Username)
	assert.True(t, strings.HasPrefix(created.Username, "shopper-"))
}

func TestOAuthService_CallbackUserInfoFailure(t *testing.T) {
	service, userRepo := newOAuthFixture(t, http.StatusInternalServerError, map[string]string{
		"error": "backend unavailable",
	})

	_, err := service.HandleCallback(context.Background(), "auth-code")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")

	// Nothing was created from the failed lookup.
	_, err = userRepo.GetByEmail("test@example.com")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}
