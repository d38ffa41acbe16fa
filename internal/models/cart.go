package models

// Cart is the persistent staging area for a user's prospective purchases.
// Exactly one per user, created on first use.
type Cart struct {
	ID     string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID string `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
}

// CartItem is a single unit of a product in a cart. Quantity is expressed by
// row count: adding the same product twice creates two rows.
type CartItem struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	CartID    string `json:"cart_id" gorm:"index;type:varchar(36)"`
	ProductID string `json:"product_id" gorm:"index;type:varchar(36)"`
}

// CartLine is one row of the aggregated cart view: a product together with
// how many units of it are in the cart.
type CartLine struct {
	Product   Product `json:"product"`
	LineCount int     `json:"line_count"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// CartView is the aggregated contents of a cart.
type CartView struct {
	Lines      []CartLine `json:"lines"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
}

// PendingCheckout is the session-scoped snapshot taken when the user begins
// checkout: product quantities plus the delivery address. It lives in the
// checkout store until the order is created or the snapshot expires.
type PendingCheckout struct {
	Quantities map[string]int `json:"quantities"` // product ID -> unit count
	Address    string         `json:"address"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
}
