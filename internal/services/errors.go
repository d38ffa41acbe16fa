package services

import "errors"

// Domain errors recovered at the handler boundary and turned into HTTP
// statuses plus a user-facing message. Nothing here is fatal to the process.
var (
	// ErrEmptyCart is returned when checkout is committed with nothing
	// selected. No order is created in that case.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidCode is returned for a code that does not exist for the
	// caller or is owned by someone else.
	ErrInvalidCode = errors.New("invalid code")

	// ErrCodeExpired is returned for a matching code past its TTL.
	ErrCodeExpired = errors.New("code has expired")

	// ErrInvalidStatus is returned for a status outside the vocabulary.
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrInvalidCredentials is returned for a failed login or a wrong
	// current password. Deliberately does not say which part failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUsernameTaken and ErrEmailTaken are returned on registration and
	// email-change conflicts.
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")

	// ErrPasswordMismatch is returned when a password and its confirmation
	// differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
)
