package errors

import (
	"errors"
	"fmt"
)

var (
	// User / point account errors
	ErrUserNotFound             = errors.New("user not found")
	ErrInsufficientPointBalance = errors.New("insufficient point balance")

	// Payment errors
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrNotPaymentOwner        = errors.New("payment does not belong to requesting user")
	ErrAmountBelowMinimum     = errors.New("amount below minimum payment unit")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrDuplicatePaymentKey    = errors.New("duplicate payment key")

	// Refund errors
	ErrRefundNotAllowed    = errors.New("payment is not refundable in its current status")
	ErrInvalidRefundAmount = errors.New("refund amount out of bounds")

	// Gateway errors
	ErrUnsupportedMethod        = errors.New("unsupported payment method")
	ErrDirectCreateNotSupported = errors.New("method cannot create payments server-side")
	ErrGatewayUnavailable       = errors.New("payment gateway unavailable")

	// Lock errors
	ErrLockAcquisitionFailed = errors.New("failed to acquire lock")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
