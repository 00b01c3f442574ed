package service

import "context"

// TransactionManager defines the interface for transaction management.
// The orchestrator uses this to make a payment/refund row and its point
// delta commit or roll back as one unit of work.
type TransactionManager interface {
	// WithTransaction executes the given function within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// Otherwise, it is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// LockManager serializes critical sections across instances. The refund
// path holds a per-payment lock so two concurrent refunds cannot race the
// cumulative-amount check.
type LockManager interface {
	// WithLock runs fn while holding the named lock, releasing it on return.
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
