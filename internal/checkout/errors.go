package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrAmountMismatch      = errors.New("total_amount must equal subtotal + shipping_fee")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrSignatureMismatch   = errors.New("invalid signature")
	ErrOrderNotFound       = errors.New("order not found")
)

// ValidationError rejects a malformed draft or request before any side effect.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// GatewayError wraps a failed payment intent request. Body holds the raw
// gateway response when one was received.
type GatewayError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("payment gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("payment gateway: %v", e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
