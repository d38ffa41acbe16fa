package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthService handles Google sign-in: the redirect URL, the code exchange
// and linking the external identity to a local account.
type OAuthService struct {
	userRepo    repositories.UserRepository
	authService *AuthService
	oauthConfig *oauth2.Config
	userInfoURL string
}

// OAuthConfig holds the Google client credentials. Endpoint and UserInfoURL
// default to Google's; tests point them at a stub server.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
}

// NewOAuthService creates a new OAuthService.
func NewOAuthService(userRepo repositories.UserRepository, authService *AuthService, cfg OAuthConfig) *OAuthService {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = googleUserInfoURL
	}
	return &OAuthService{
		userRepo:    userRepo,
		authService: authService,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
	}
}

// AuthURL returns the Google consent page URL for the given state.
func (s *OAuthService) AuthURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"given_name"`
}

// HandleCallback exchanges the authorization code, reads the user info and
// returns a JWT for the matching local account. A known email gets its
// google_id linked; an unknown one gets a fresh account.
func (s *OAuthService) HandleCallback(ctx context.Context, code string) (string, error) {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	resp, err := s.oauthConfig.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user info request failed with status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Email == "" {
		return "", fmt.Errorf("user info did not include an email")
	}

	user, err := s.findOrCreateUser(&info)
	if err != nil {
		return "", err
	}

	return s.authService.GenerateToken(user)
}

func (s *OAuthService) findOrCreateUser(info *googleUserInfo) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(info.Email)
	if err == nil {
		if user.GoogleID == "" {
			user.GoogleID = info.ID
			if err := s.userRepo.Update(user); err != nil {
				return nil, fmt.Errorf("failed to link google account: %w", err)
			}
		}
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	// First sign-in with this address. The account gets an unusable random
	// password; the user can set one through the reset flow.
	username := strings.SplitN(info.Email, "@", 2)[0]
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		username = fmt.Sprintf("%s-%s", username, uuid.New().String()[:8])
	}
	user = &models.User{
		Username: username,
		Email:    info.Email,
		Password: uuid.New().String(),
		GoogleID: info.ID,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user from google account: %w", err)
	}
	return user, nil
}
