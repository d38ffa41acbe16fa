package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login, JWT issuance and the credential
// changes gated by verification codes.
type AuthService struct {
	userRepo     repositories.UserRepository
	verification *VerificationService
	jwtSecret    []byte
	tokenDurat   time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, verification *VerificationService, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		verification: verification,
		jwtSecret:    []byte(jwtSecret),
		tokenDurat:   24 * time.Hour, // Token valid for 24 hours
	}
}

// RegisterUser registers a new user, hashes their password, and saves them
// to the database.
func (s *AuthService) RegisterUser(user *models.User) error {
	if existingUser, err := s.userRepo.GetByUsername(user.Username); err == nil && existingUser != nil {
		return fmt.Errorf("%w: %s", ErrUsernameTaken, user.Username)
	}
	if existingUser, err := s.userRepo.GetByEmail(user.Email); err == nil && existingUser != nil {
		return fmt.Errorf("%w: %s", ErrEmailTaken, user.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword) // Store the hashed password

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// LoginUser authenticates a user and returns a JWT token if successful.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		// Do not reveal whether the username exists.
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.GenerateToken(user)
}

// GenerateToken issues a signed JWT for the user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":      time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if
// valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// ChangePassword replaces the user's password after checking the current
// one and the confirmation.
func (s *AuthService) ChangePassword(userID, current, newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	return s.userRepo.Update(user)
}

// RequestEmailChange issues a verification code to the new address. An
// address already registered to any account is rejected.
func (s *AuthService) RequestEmailChange(userID, newEmail string) error {
	if existing, err := s.userRepo.GetByEmail(newEmail); err == nil && existing != nil {
		return fmt.Errorf("%w: %s", ErrEmailTaken, newEmail)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	_, err = s.verification.IssueCode(user, newEmail)
	return err
}

// ConfirmEmailChange validates the submitted code and, on success, updates
// the user's email to the new address.
func (s *AuthService) ConfirmEmailChange(userID, newEmail, code string) error {
	if err := s.verification.ValidateCode(userID, code); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	user.Email = newEmail
	return s.userRepo.Update(user)
}

// RequestPasswordReset issues a verification code to the account's email.
// Fails with repositories.ErrNotFound when no account has that address.
func (s *AuthService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	_, err = s.verification.IssueCode(user, email)
	return err
}

// ResetPassword validates the submitted code for the account behind the
// email and sets the new password.
func (s *AuthService) ResetPassword(email, code, newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if err := s.verification.ValidateCode(user.ID, code); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	return s.userRepo.Update(user)
}

// GetAddress returns the user's saved delivery address.
func (s *AuthService) GetAddress(userID string) (*models.UserAddress, error) {
	return s.userRepo.GetAddress(userID)
}

// SaveAddress creates or replaces the user's saved delivery address.
func (s *AuthService) SaveAddress(address *models.UserAddress) error {
	return s.userRepo.SaveAddress(address)
}

// GetUser returns a user by ID.
func (s *AuthService) GetUser(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}
