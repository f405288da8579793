package services

import (
	"errors"
	"fmt"
)

var (
	ErrBadCreds        = errors.New("invalid email or password")
	ErrLoginRequired   = errors.New("please log in to continue")
	ErrEmptyCart       = errors.New("your cart is empty")
	ErrAddressRequired = errors.New("shipping address is required")
	ErrInvalidCard     = errors.New("card number must be 16 digits")
	ErrInvalidQuery    = errors.New("invalid search query")
	ErrInvalidID       = errors.New("invalid id")
	ErrForbidden       = errors.New("not allowed")
)

// InsufficientStockError blocks checkout for one cart line.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (requested %d, available %d)", e.Name, e.Requested, e.Available)
}

// FieldError is a form validation failure shown next to the field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

func fieldErr(field, msg string) error { return &FieldError{Field: field, Message: msg} }
