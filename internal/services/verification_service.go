package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/mailer"
)

// VerificationService issues and validates the short-lived email codes that
// gate password resets and email changes.
type VerificationService struct {
	codeRepo repositories.CodeRepository
	sender   mailer.Sender
	ttl      time.Duration
}

// NewVerificationService creates a new VerificationService. ttl is the code
// lifetime; issued codes expire ttl after creation.
func NewVerificationService(codeRepo repositories.CodeRepository, sender mailer.Sender, ttl time.Duration) *VerificationService {
	return &VerificationService{
		codeRepo: codeRepo,
		sender:   sender,
		ttl:      ttl,
	}
}

// IssueCode generates a fresh code for the user, persists it and dispatches
// the email on a goroutine. Issuance succeeds once the record is persisted;
// delivery failures are logged and dropped. Earlier codes stay valid until
// they expire on their own.
func (s *VerificationService) IssueCode(user *models.User, toEmail string) (*models.VerificationCode, error) {
	value, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	now := time.Now()
	code := &models.VerificationCode{
		Code:      value,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.codeRepo.Create(code); err != nil {
		return nil, fmt.Errorf("failed to persist code: %w", err)
	}

	subject := "Your verification code"
	body := mailer.VerificationCodeHTML(user.Username, value, int(s.ttl.Seconds()))
	go func() {
		if err := s.sender.Send(toEmail, subject, body); err != nil {
			log.Printf("Warning: failed to send verification code to %s: %v", toEmail, err)
		}
	}()

	return code, nil
}

// ValidateCode checks a submitted code for the user: existence, expiry, and
// ownership. A valid code is not consumed; it keeps validating until it
// expires.
func (s *VerificationService) ValidateCode(userID, value string) error {
	record, err := s.codeRepo.FindByCodeAndUser(value, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidCode
		}
		return fmt.Errorf("failed to look up code: %w", err)
	}

	if record.Expired(time.Now()) {
		return ErrCodeExpired
	}

	// The lookup is already filtered by user; re-check ownership anyway
	// before permitting a sensitive change.
	if record.UserID != userID {
		return ErrInvalidCode
	}

	return nil
}

// generateCode returns a 6-digit zero-padded decimal string from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
