package models

import "time"

// VerificationCode is a short-lived numeric secret mailed to a user to prove
// control of an email address. Codes are never deleted; validity is decided
// by timestamp comparison at check time.
type VerificationCode struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Code      string    `json:"-" gorm:"index;type:varchar(6)"`
	UserID    string    `json:"user_id" gorm:"index;type:varchar(36)"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the code is past its expiry at the given instant.
func (c *VerificationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
