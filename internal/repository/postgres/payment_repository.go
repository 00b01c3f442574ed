package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/ses9133/pointpay/internal/domain/errors"
	"github.com/ses9133/pointpay/internal/domain/payment"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `id, user_id, order_id, payment_key, amount, method, status,
	        product_code, product_name, failure_code, failure_message,
	        requested_at, approved_at, cancelled_at`

// PaymentRepository implements payment.Repository using PostgreSQL.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Create inserts a new payment.
func (r *PaymentRepository) Create(ctx context.Context, p payment.Payment) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payments
		 (id, user_id, order_id, payment_key, amount, method, status,
		  product_code, product_name, failure_code, failure_message,
		  requested_at, approved_at, cancelled_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.UserID, p.OrderID, p.PaymentKey, p.Amount, string(p.Method), string(p.Status),
		p.ProductCode, p.ProductName, p.FailureCode, p.FailureMessage,
		p.RequestedAt, p.ApprovedAt, p.CancelledAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrDuplicatePaymentKey
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment by its ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (payment.Payment, error) {
	return r.scanPayment(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

// GetByOrderID retrieves a payment by merchant order ID.
func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (payment.Payment, error) {
	return r.scanPayment(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID))
}

// GetByPaymentKey retrieves a payment by provider key.
func (r *PaymentRepository) GetByPaymentKey(ctx context.Context, key string) (payment.Payment, error) {
	return r.scanPayment(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE payment_key = $1`, key))
}

// ListByUser returns the user's payments newest-first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]payment.Payment, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE user_id = $1 ORDER BY requested_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []payment.Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// Update persists a payment's status fields.
func (r *PaymentRepository) Update(ctx context.Context, p payment.Payment) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE payments SET
		  status=$1, payment_key=$2, failure_code=$3, failure_message=$4,
		  approved_at=$5, cancelled_at=$6
		 WHERE id=$7`,
		string(p.Status), p.PaymentKey, p.FailureCode, p.FailureMessage,
		p.ApprovedAt, p.CancelledAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentNotFound
	}
	return nil
}

// Lock loads a payment with a row-level lock (SELECT FOR UPDATE).
func (r *PaymentRepository) Lock(ctx context.Context, id uuid.UUID) (payment.Payment, error) {
	return r.scanPayment(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id))
}

// CreateRefund inserts a refund row.
func (r *PaymentRepository) CreateRefund(ctx context.Context, rf payment.Refund) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payment_refunds
		 (id, payment_id, amount, reason, status, failure_code, failure_message, requested_at, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rf.ID, rf.PaymentID, rf.Amount, rf.Reason, string(rf.Status),
		rf.FailureCode, rf.FailureMessage, rf.RequestedAt, rf.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert refund: %w", err)
	}
	return nil
}

// ListRefunds returns refunds for a payment, oldest first.
func (r *PaymentRepository) ListRefunds(ctx context.Context, paymentID uuid.UUID) ([]payment.Refund, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, payment_id, amount, reason, status, failure_code, failure_message, requested_at, completed_at
		 FROM payment_refunds WHERE payment_id = $1 ORDER BY requested_at ASC`, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list refunds: %w", err)
	}
	defer rows.Close()

	var refunds []payment.Refund
	for rows.Next() {
		rf := payment.Refund{}
		var status string
		if err := rows.Scan(&rf.ID, &rf.PaymentID, &rf.Amount, &rf.Reason, &status,
			&rf.FailureCode, &rf.FailureMessage, &rf.RequestedAt, &rf.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan refund: %w", err)
		}
		rf.Status = payment.RefundStatus(status)
		refunds = append(refunds, rf)
	}
	return refunds, rows.Err()
}

// CompletedRefundTotal returns the sum of completed refund amounts for a payment.
func (r *PaymentRepository) CompletedRefundTotal(ctx context.Context, paymentID uuid.UUID) (int64, error) {
	var total int64
	err := r.db(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payment_refunds
		 WHERE payment_id = $1 AND status = $2`, paymentID, string(payment.RefundCompleted),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum refunds: %w", err)
	}
	return total, nil
}

// scanPayment scans a payment from any source implementing the scanner interface.
func (r *PaymentRepository) scanPayment(s scanner) (payment.Payment, error) {
	p := payment.Payment{}
	var (
		method string
		status string
	)
	err := s.Scan(
		&p.ID, &p.UserID, &p.OrderID, &p.PaymentKey, &p.Amount, &method, &status,
		&p.ProductCode, &p.ProductName, &p.FailureCode, &p.FailureMessage,
		&p.RequestedAt, &p.ApprovedAt, &p.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.Payment{}, domainErrors.ErrPaymentNotFound
		}
		return payment.Payment{}, fmt.Errorf("scan payment: %w", err)
	}
	p.Method = payment.Method(method)
	p.Status = payment.Status(status)
	return p, nil
}
