package models

import "time"

// User represents an identity record owned by the auth boundary.
type User struct {
	ID       string `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Role     string `db:"role" json:"role"`
}

// User roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Product represents a product in the catalog
type Product struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Stock       int       `db:"stock" json:"stock"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// LineItem is one product entry within an order. Price and name are
// snapshots copied from the catalog at order-creation time and are never
// re-fetched afterwards.
type LineItem struct {
	OrderID   string  `db:"order_id" json:"-"`
	ProductID string  `db:"product_id" json:"product_id"`
	Quantity  int     `db:"quantity" json:"quantity"`
	Price     float64 `db:"price" json:"price"`
	Name      string  `db:"name" json:"name"`
}

// Order represents a customer order
type Order struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Username    string     `db:"username" json:"username"`
	Items       []LineItem `db:"-" json:"items"`
	TotalAmount float64    `db:"total_amount" json:"total_amount"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Order statuses
const (
	OrderStatusReceived  = "received"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCompleted = "completed"
	OrderStatusDenied    = "denied"
)

// ValidOrderStatus reports whether s is one of the four allowed statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusReceived, OrderStatusConfirmed, OrderStatusCompleted, OrderStatusDenied:
		return true
	}
	return false
}

// StockCheckItem is one (product, quantity) pair in a stock check request.
// Duplicates are allowed; each occurrence is checked independently.
type StockCheckItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UnavailableProduct describes one item that failed a stock check.
type UnavailableProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Available int    `json:"available_quantity"`
	Requested int    `json:"requested_quantity"`
}

// UnknownProductName is the placeholder used when a stock check references
// a product the catalog has never heard of.
const UnknownProductName = "Unknown Product"

// StockCheckResult is the aggregate answer to a stock check. Available is
// true only when every requested item exists and is sufficiently stocked;
// Unavailable lists the violating items in request order.
type StockCheckResult struct {
	Available   bool                 `json:"available"`
	Unavailable []UnavailableProduct `json:"unavailable_products"`
}
