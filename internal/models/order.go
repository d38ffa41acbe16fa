package models

import "time"

// Order statuses. Membership is validated when a status is set, but no
// transition graph is enforced: any status may follow any other.
const (
	StatusOrdered    = "ordered"
	StatusCollecting = "collecting"
	StatusDelivering = "delivering"
	StatusShipped    = "shipped"
	StatusAccepted   = "accepted"
	StatusCanceled   = "canceled"
)

// OrderStatuses lists every valid order status.
var OrderStatuses = []string{
	StatusOrdered,
	StatusCollecting,
	StatusDelivering,
	StatusShipped,
	StatusAccepted,
	StatusCanceled,
}

// ValidOrderStatus reports whether s is a member of the status vocabulary.
func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// OrderItem represents a single line within an order.
type OrderItem struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	OrderID   string  `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price"` // Unit price at the time of order
}

// OrderAddress is the delivery address attached to an order, 1:1.
type OrderAddress struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	OrderID   string  `json:"order_id" gorm:"uniqueIndex;type:varchar(36)"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Order represents a committed purchase request.
type Order struct {
	ID          string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string       `json:"user_id" gorm:"index;type:varchar(36)"`
	Items       []OrderItem  `json:"items"`
	Address     OrderAddress `json:"address"`
	TotalAmount float64      `json:"total_amount"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
