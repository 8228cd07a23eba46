package product

import "time"

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

type Product struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	PricePerDay float64    `json:"price_per_day"`
	Description *string    `json:"description,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
	Quantity    int        `json:"quantity"`
	Status      Status     `json:"status"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Deleted reports whether the product has been soft-deleted.
func (p *Product) Deleted() bool {
	return p.DeletedAt != nil
}

type NewProduct struct {
	Name        string
	Category    string
	PricePerDay float64
	Description *string
	ImageURL    *string
	Quantity    int
}

// UpdateProduct carries only the fields the admin chose to change.
type UpdateProduct struct {
	Name        *string
	Category    *string
	PricePerDay *float64
	Description *string
	ImageURL    *string
	Quantity    *int
	Status      *Status
}

type QueryOptions struct {
	Category       string
	Search         string
	IncludeDeleted bool
	OnlyActive     bool
	Page           int32
	Limit          int32
}
