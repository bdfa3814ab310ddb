package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found or access denied")
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrInvalidStock     = errors.New("stock cannot be a negative number")
	ErrInvalidStatus    = errors.New("unknown order status")
	ErrInvalidID        = errors.New("invalid id")
	ErrUserIDRequired   = errors.New("user id required")

	// ErrTransient wraps store-level lock conflicts and timeouts; the
	// whole operation may be retried, nothing was applied.
	ErrTransient = errors.New("transient store conflict")
)

// InsufficientStockError identifies which product could not cover the
// requested quantity.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock available for product %s", e.ProductID)
}

// InvalidStateError reports an illegal order status transition.
type InvalidStateError struct {
	Current   OrderStatus
	Attempted OrderStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("order status is %s, cannot transition to %s", e.Current, e.Attempted)
}

// IsInsufficientStock reports whether err is an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}
