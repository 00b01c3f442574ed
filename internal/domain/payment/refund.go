package payment

import (
	"time"

	"github.com/ses9133/pointpay/internal/domain/errors"

	"github.com/google/uuid"
)

// RefundStatus represents the refund lifecycle. A refund is created in
// requested state and resolved synchronously within the same request;
// completed and failed are terminal.
type RefundStatus string

const (
	RefundRequested RefundStatus = "requested"
	RefundCompleted RefundStatus = "completed"
	RefundFailed    RefundStatus = "failed"
)

// Refund is a refund event against exactly one payment. Partial refunds
// are allowed as long as the completed total stays within the payment
// amount.
type Refund struct {
	ID             uuid.UUID
	PaymentID      uuid.UUID
	Amount         int64
	Reason         string
	Status         RefundStatus
	FailureCode    *string
	FailureMessage *string
	RequestedAt    time.Time
	CompletedAt    *time.Time
}

// NewRefund creates a refund in requested state. The amount bound against
// the payment's remaining refundable balance is enforced by the
// orchestrator, which knows the completed-refund total.
func NewRefund(paymentID uuid.UUID, amount int64, reason string) (Refund, error) {
	if amount <= 0 {
		return Refund{}, errors.ErrInvalidRefundAmount
	}
	return Refund{
		ID:          uuid.New(),
		PaymentID:   paymentID,
		Amount:      amount,
		Reason:      reason,
		Status:      RefundRequested,
		RequestedAt: time.Now(),
	}, nil
}

// Completed returns the refund resolved as completed.
func (r Refund) Completed() Refund {
	now := time.Now()
	r.Status = RefundCompleted
	r.CompletedAt = &now
	r.FailureCode = nil
	r.FailureMessage = nil
	return r
}

// Failed returns the refund resolved as failed with the given cause.
func (r Refund) Failed(code, message string) Refund {
	r.Status = RefundFailed
	r.FailureCode = &code
	r.FailureMessage = &message
	return r
}
