package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the durable ledger of payments and refunds.
//
// Payments are append-only: rows are inserted once per attempt and updated
// only through orchestrator status transitions, never deleted.
type Repository interface {
	// Create inserts a new payment. A payment_key collision surfaces as
	// errors.ErrDuplicatePaymentKey.
	Create(ctx context.Context, p Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id uuid.UUID) (Payment, error)

	// GetByOrderID retrieves a payment by merchant order ID.
	GetByOrderID(ctx context.Context, orderID string) (Payment, error)

	// GetByPaymentKey retrieves a payment by provider key.
	GetByPaymentKey(ctx context.Context, key string) (Payment, error)

	// ListByUser returns the user's payments ordered newest-first by
	// request time.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Payment, error)

	// Update persists a payment's current status fields.
	Update(ctx context.Context, p Payment) error

	// Lock loads a payment with a row-level lock. Must run inside a
	// transaction.
	Lock(ctx context.Context, id uuid.UUID) (Payment, error)

	// CreateRefund inserts a refund row.
	CreateRefund(ctx context.Context, r Refund) error

	// ListRefunds returns refunds for a payment, oldest first.
	ListRefunds(ctx context.Context, paymentID uuid.UUID) ([]Refund, error)

	// CompletedRefundTotal returns the sum of completed refund amounts
	// for a payment.
	CompletedRefundTotal(ctx context.Context, paymentID uuid.UUID) (int64, error)
}
