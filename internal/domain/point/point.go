package point

import (
	"context"

	"github.com/google/uuid"
)

// Ledger is the point-balance capability consumed by the payment
// orchestrator. Points are the internal currency credited on payment
// success and debited on refund.
//
// Implementations must make Credit and Debit participate in the ambient
// transaction when one is present on the context, so that a point delta
// and the ledger write commit or roll back together.
type Ledger interface {
	// Credit adds amount to the user's balance and returns the balance
	// after the mutation.
	Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)

	// Debit subtracts amount from the user's balance and returns the
	// balance after the mutation. Fails with
	// errors.ErrInsufficientPointBalance when the balance is too low.
	Debit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)

	// Balance returns the user's current balance.
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
}
