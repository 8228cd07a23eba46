package order

import (
	"errors"
	"fmt"
)

var (
	// -- Validation & Input --
	ErrNoItems         = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("item quantity must be greater than zero")
	ErrInvalidStatus   = errors.New("invalid order status")

	// -- Resource State --
	ErrOrderNotFound    = errors.New("order not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrAlreadyCancelled = errors.New("Order is already cancelled.")
)

// InsufficientStockError names the offending product and carries the
// available-vs-requested quantities.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient quantity for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}
