package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/ses9133/pointpay/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PointRepository implements point.Ledger against the users table. Both
// mutations take a row-level lock first so concurrent point deltas for
// the same user serialize inside their transactions.
type PointRepository struct {
	pool *pgxpool.Pool
}

// NewPointRepository creates a new PointRepository.
func NewPointRepository(pool *pgxpool.Pool) *PointRepository {
	return &PointRepository{pool: pool}
}

func (r *PointRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Credit adds amount to the user's balance and returns the new balance.
func (r *PointRepository) Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domainErrors.NewValidationError("amount", "must be greater than 0")
	}
	if _, err := r.lockBalance(ctx, userID); err != nil {
		return 0, err
	}

	var balance int64
	err := r.db(ctx).QueryRow(ctx,
		`UPDATE users SET point_balance = point_balance + $1, updated_at = NOW()
		 WHERE id = $2 RETURNING point_balance`, amount, userID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrUserNotFound
		}
		return 0, fmt.Errorf("credit points: %w", err)
	}
	return balance, nil
}

// Debit subtracts amount from the user's balance and returns the new
// balance.
func (r *PointRepository) Debit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domainErrors.NewValidationError("amount", "must be greater than 0")
	}
	current, err := r.lockBalance(ctx, userID)
	if err != nil {
		return 0, err
	}
	if current < amount {
		return 0, domainErrors.ErrInsufficientPointBalance
	}

	var balance int64
	err = r.db(ctx).QueryRow(ctx,
		`UPDATE users SET point_balance = point_balance - $1, updated_at = NOW()
		 WHERE id = $2 RETURNING point_balance`, amount, userID,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("debit points: %w", err)
	}
	return balance, nil
}

// Balance returns the user's current balance.
func (r *PointRepository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db(ctx).QueryRow(ctx,
		`SELECT point_balance FROM users WHERE id = $1`, userID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrUserNotFound
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

func (r *PointRepository) lockBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db(ctx).QueryRow(ctx,
		`SELECT point_balance FROM users WHERE id = $1 FOR UPDATE`, userID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrUserNotFound
		}
		return 0, fmt.Errorf("lock balance: %w", err)
	}
	return balance, nil
}
