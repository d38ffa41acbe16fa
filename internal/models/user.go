package models

import "gorm.io/gorm"

// User represents a customer account of the store.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	GoogleID   string `json:"-" gorm:"type:varchar(255);default:null"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// UserAddress is the saved delivery address for a user, used to prefill
// checkout. A user has at most one.
type UserAddress struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	UserID    string  `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	Address   string  `json:"address" validate:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
