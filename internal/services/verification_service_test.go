package services_test

import (
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
)

// fakeSender records outgoing mail and signals each delivery so tests can
// wait for the asynchronous dispatch without sleeping.
type fakeSender struct {
	mu        sync.Mutex
	messages  []fakeMessage
	delivered chan struct{}
}

type fakeMessage struct {
	To      string
	Subject string
	Body    string
}

func newFakeSender() *fakeSender {
	return &fakeSender{delivered: make(chan struct{}, 16)}
}

func (f *fakeSender) Send(to, subject, htmlBody string) error {
	f.mu.Lock()
	f.messages = append(f.messages, fakeMessage{To: to, Subject: subject, Body: htmlBody})
	f.mu.Unlock()
	f.delivered <- struct{}{}
	return nil
}

// waitForMessage blocks until a message has been delivered and returns the
// latest one.
func (f *fakeSender) waitForMessage(t *testing.T) fakeMessage {
	t.Helper()
	select {
	case <-f.delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for email delivery")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[len(f.messages)-1]
}

var codePattern = regexp.MustCompile(`\d{6}`)

const codeTTL = 35 * time.Second

func TestVerificationService_IssueCode(t *testing.T) {
	codeRepo := repositories.NewMockCodeRepository()
	sender := newFakeSender()
	service := services.NewVerificationService(codeRepo, sender, codeTTL)

	user := &models.User{ID: "user-1", Username: "testuser", Email: "test@example.com"}

	code, err := service.IssueCode(user, user.Email)
	assert.NoError(t, err)
	assert.Regexp(t, `^\d{6}$`, code.Code)
	assert.Equal(t, "user-1", code.UserID)
	assert.WithinDuration(t, code.CreatedAt.Add(codeTTL), code.ExpiresAt, time.Second)

	// The record is queryable immediately; the email arrives out of band
	// and carries the same code.
	stored, err := codeRepo.FindByCodeAndUser(code.Code, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, code.Code, stored.Code)

	msg := sender.waitForMessage(t)
	assert.Equal(t, "test@example.com", msg.To)
	assert.Contains(t, msg.Body, code.Code)
}

func TestVerificationService_ValidateCode(t *testing.T) {
	codeRepo := repositories.NewMockCodeRepository()
	sender := newFakeSender()
	service := services.NewVerificationService(codeRepo, sender, codeTTL)

	user := &models.User{ID: "user-1", Username: "testuser", Email: "test@example.com"}
	code, err := service.IssueCode(user, user.Email)
	assert.NoError(t, err)

	// Fresh, unexpired, correctly owned.
	assert.NoError(t, service.ValidateCode("user-1", code.Code))

	// Validation does not consume the code: a second check still passes.
	assert.NoError(t, service.ValidateCode("user-1", code.Code))

	// A value that was never issued is invalid.
	err = service.ValidateCode("user-1", "000000")
	if code.Code == "000000" {
		t.Skip("issued code collided with the probe value")
	}
	assert.True(t, errors.Is(err, services.ErrInvalidCode))

	// Someone else's code is invalid for this caller.
	err = service.ValidateCode("user-2", code.Code)
	assert.True(t, errors.Is(err, services.ErrInvalidCode))
}

func TestVerificationService_ValidateCode_Expired(t *testing.T) {
	codeRepo := repositories.NewMockCodeRepository()
	sender := newFakeSender()
	service := services.NewVerificationService(codeRepo, sender, codeTTL)

	// An expired record fails regardless of value match.
	expired := &models.VerificationCode{
		Code:      "123456",
		UserID:    "user-1",
		CreatedAt: time.Now().Add(-2 * codeTTL),
		ExpiresAt: time.Now().Add(-codeTTL),
	}
	assert.NoError(t, codeRepo.Create(expired))

	err := service.ValidateCode("user-1", "123456")
	assert.True(t, errors.Is(err, services.ErrCodeExpired))
}

func TestVerificationService_TwoOutstandingCodes(t *testing.T) {
	codeRepo := repositories.NewMockCodeRepository()
	sender := newFakeSender()
	service := services.NewVerificationService(codeRepo, sender, codeTTL)

	user := &models.User{ID: "user-1", Username: "testuser", Email: "test@example.com"}

	first, err := service.IssueCode(user, user.Email)
	assert.NoError(t, err)
	second, err := service.IssueCode(user, user.Email)
	assert.NoError(t, err)

	// Issuing a new code does not invalidate the previous one: both stay
	// valid until their own expiry.
	assert.NoError(t, service.ValidateCode("user-1", first.Code))
	assert.NoError(t, service.ValidateCode("user-1", second.Code))
}

// codeFromEmail extracts the 6-digit code from a delivered message body.
func codeFromEmail(t *testing.T, body string) string {
	t.Helper()
	code := codePattern.FindString(body)
	if code == "" {
		t.Fatal("no code found in email body")
	}
	return code
}
