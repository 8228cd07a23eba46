package product

import "errors"

var (
	// -- Validation & Input --
	ErrNameRequired    = errors.New("product name cannot be empty")
	ErrInvalidPrice    = errors.New("price per day cannot be negative")
	ErrInvalidQuantity = errors.New("quantity cannot be negative")
	ErrNoFieldsToSet   = errors.New("no fields to update")

	// -- Resource State --
	ErrProductNotFound = errors.New("product not found")
)
