package order

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the five order statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID         uint       `json:"id"`
	ExternalID uuid.UUID  `json:"external_id"`
	UserID     uint       `json:"user_id"`
	UserEmail  string     `json:"-"`
	Total      float64    `json:"total"`
	Status     Status     `json:"status"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Items      []Item     `json:"items"`
}

// Item is the line-item snapshot captured at purchase time. Name, price and
// image are frozen copies, not live joins against the catalog.
type Item struct {
	ID        uint    `json:"id"`
	OrderID   uint    `json:"order_id"`
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  *string `json:"image_url,omitempty"`
}

type LineItemInput struct {
	ProductID uint
	Name      string
	Price     float64
	Quantity  int
	ImageURL  *string
}

type PlaceOrderInput struct {
	Items     []LineItemInput
	Total     float64
	StartDate *time.Time
	EndDate   *time.Time
}

// CompletedNotification is handed to the notifier when an admin moves an
// order into the completed status for the first time.
type CompletedNotification struct {
	OrderID     uint      `json:"order_id"`
	ExternalID  string    `json:"external_id"`
	UserEmail   string    `json:"user_email"`
	Total       float64   `json:"total"`
	CompletedAt time.Time `json:"completed_at"`
}
