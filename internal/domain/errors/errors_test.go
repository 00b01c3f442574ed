package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name: "with wrapped error",
			err: &DomainError{
				Code:    "gateway_unavailable",
				Message: "payment gateway call failed",
				Err:     errors.New("connection refused"),
			},
			expected: "payment gateway call failed: connection refused",
		},
		{
			name: "without wrapped error",
			err: &DomainError{
				Code:    "invalid_transition",
				Message: "cannot transition from failed to success",
				Err:     nil,
			},
			expected: "cannot transition from failed to success",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	domainErr := NewDomainError("refund_not_allowed", "payment is not refundable", ErrRefundNotAllowed)
	assert.ErrorIs(t, domainErr, ErrRefundNotAllowed)
	assert.Equal(t, ErrRefundNotAllowed, errors.Unwrap(domainErr))
}

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError("amount", "must be at least 100")
	assert.Equal(t, "validation failed for field amount: must be at least 100", err.Error())
}
