package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound is returned when no order matches the id or the caller does not own it
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderNotCancellable is returned when the owner tries to cancel a non-pending order
	ErrOrderNotCancellable = errors.New("only pending orders can be cancelled")
	// ErrInvalidTransition is returned when a status change is not in the transition table
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrEmptyCart is returned when an order has no lines
	ErrEmptyCart = errors.New("cart is empty")
	// ErrStoreNotFound is returned when a pickup store is missing or inactive
	ErrStoreNotFound = errors.New("store not found or inactive")
	// ErrAddressNotFound is returned when a delivery address is missing or not owned by the caller
	ErrAddressNotFound = errors.New("address not found")
	// ErrEmailTaken is returned when registering or updating to an email already in use
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials is returned on a failed login
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Pricing error codes
const (
	CodeProductUnavailable = "PRODUCT_UNAVAILABLE"
	CodeInvalidOption      = "INVALID_OPTION"
	CodePriceMismatch      = "PRICE_MISMATCH"
)

// PricingError reports a cart line that cannot be priced from the catalog
type PricingError struct {
	Code    string
	Line    int // zero-based cart line index
	Message string
}

func (e *PricingError) Error() string {
	return fmt.Sprintf("cart line %d: %s", e.Line, e.Message)
}

// IsUniqueViolation reports whether err is a unique constraint failure.
// It relies on the dialector translating driver errors (gorm.Config.TranslateError).
func IsUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
