package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/ses9133/pointpay/internal/domain/errors"
	"github.com/ses9133/pointpay/internal/domain/payment"
	"github.com/ses9133/pointpay/internal/domain/point"
	"github.com/ses9133/pointpay/internal/gateway"
	"github.com/ses9133/pointpay/internal/infrastructure/observability"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// errGatewayDeclined marks a provider-reported decline for circuit
// breaker accounting. It never leaves this package: declines are recorded
// into the payment row, not raised.
var errGatewayDeclined = stderrors.New("gateway declined")

// PaymentService drives the payment lifecycle. It is the only component
// that mutates payment and refund status, and every operation is one
// atomic unit of work against the ledger and the point account.
type PaymentService struct {
	ledger   payment.Repository
	points   point.Ledger
	tx       TransactionManager
	locks    LockManager
	resolver *gateway.Resolver
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	ledger payment.Repository,
	points point.Ledger,
	tx TransactionManager,
	locks LockManager,
	resolver *gateway.Resolver,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		ledger:   ledger,
		points:   points,
		tx:       tx,
		locks:    locks,
		resolver: resolver,
		metrics:  metrics,
		logger:   logger.With().Str("component", "payment_service").Logger(),
	}
}

// Create initiates a payment. Mock completes immediately; paypal returns
// the provider's redirect payload without persisting anything; stripe
// must finish client-side and call Approve.
func (s *PaymentService) Create(ctx context.Context, userID uuid.UUID, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	switch req.Method {
	case payment.MethodMock:
		return s.createMock(ctx, userID, req)
	case payment.MethodPayPal:
		return s.createCheckout(ctx, userID, req)
	case payment.MethodStripe:
		return nil, domainErrors.ErrDirectCreateNotSupported
	default:
		return nil, fmt.Errorf("method %q: %w", req.Method, domainErrors.ErrUnsupportedMethod)
	}
}

// createMock synthesizes an already-approved payment and credits points,
// all in one transaction.
func (s *PaymentService) createMock(ctx context.Context, userID uuid.UUID, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	p, err := payment.New(userID, payment.NewOrderID(), req.Amount, payment.MethodMock, req.ProductCode, req.ProductName)
	if err != nil {
		return nil, err
	}
	p, err = payment.Transition(p, payment.Approved{PaymentKey: gateway.NewMockKey()})
	if err != nil {
		return nil, err
	}

	var balance int64
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ledger.Create(txCtx, p); err != nil {
			return err
		}
		balance, err = s.points.Credit(txCtx, userID, p.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentsTotal.WithLabelValues(string(p.Method), string(p.Status)).Inc()
	s.logger.Info().Str("order_id", p.OrderID).Int64("amount", p.Amount).Msg("mock payment completed")
	return &CreatePaymentResponse{Payment: newPaymentView(p, balance)}, nil
}

// createCheckout opens a hosted-redirect session. No payment row exists
// until the caller comes back through Approve.
func (s *PaymentService) createCheckout(ctx context.Context, userID uuid.UUID, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	if req.Amount < payment.MinAmount {
		return nil, domainErrors.ErrAmountBelowMinimum
	}

	client, _, err := s.resolver.Resolve(req.Method)
	if err != nil {
		return nil, err
	}
	preparer, ok := client.(gateway.Preparer)
	if !ok {
		return nil, domainErrors.ErrDirectCreateNotSupported
	}

	orderID := payment.NewOrderID()
	redirect, err := preparer.Prepare(ctx, gateway.PrepareRequest{
		OrderID:     orderID,
		UserID:      userID.String(),
		Amount:      req.Amount,
		ProductName: req.ProductName,
	})
	if err != nil {
		return nil, domainErrors.NewDomainError("gateway_unavailable", err.Error(), domainErrors.ErrGatewayUnavailable)
	}

	return &CreatePaymentResponse{OrderID: orderID, Redirect: redirect}, nil
}

// Approve finalizes a payment through its gateway. A gateway failure is
// recorded into a FAILED payment row and still returns a view; it is
// never raised. Repeated approvals with the same order id return the
// existing payment to its owner instead of inserting a duplicate.
func (s *PaymentService) Approve(ctx context.Context, userID uuid.UUID, req ApprovePaymentRequest) (*PaymentView, error) {
	if existing, err := s.ledger.GetByOrderID(ctx, req.OrderID); err == nil {
		if existing.UserID != userID {
			return nil, domainErrors.ErrNotPaymentOwner
		}
		balance, err := s.points.Balance(ctx, userID)
		if err != nil {
			return nil, err
		}
		return newPaymentView(existing, balance), nil
	} else if !stderrors.Is(err, domainErrors.ErrPaymentNotFound) {
		return nil, err
	}

	p, err := payment.New(userID, req.OrderID, req.Amount, req.Method, req.ProductCode, req.ProductName)
	if err != nil {
		return nil, err
	}

	result := s.callGateway(ctx, userID, req)

	var ev payment.Event
	if result.Success {
		ev = payment.Approved{PaymentKey: result.PaymentKey}
	} else {
		ev = payment.Declined{Code: result.FailureCode, Message: result.FailureMessage}
	}
	p, err = payment.Transition(p, ev)
	if err != nil {
		return nil, err
	}

	var balance int64
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ledger.Create(txCtx, p); err != nil {
			return err
		}
		if p.Status == payment.StatusSuccess {
			balance, err = s.points.Credit(txCtx, userID, p.Amount)
			return err
		}
		balance, err = s.points.Balance(txCtx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentsTotal.WithLabelValues(string(p.Method), string(p.Status)).Inc()
	if p.Status == payment.StatusSuccess {
		s.logger.Info().Str("order_id", p.OrderID).Str("method", string(p.Method)).Msg("payment approved")
	} else {
		s.logger.Warn().Str("order_id", p.OrderID).Str("method", string(p.Method)).
			Str("failure_code", derefOr(p.FailureCode, "")).Msg("payment declined")
	}
	return newPaymentView(p, balance), nil
}

// callGateway resolves the client and runs the approval through its
// circuit breaker, normalizing every failure mode into a Result.
func (s *PaymentService) callGateway(ctx context.Context, userID uuid.UUID, req ApprovePaymentRequest) *gateway.Result {
	client, breaker, err := s.resolver.Resolve(req.Method)
	if err != nil {
		return gateway.Fail(failureCode(req.Method), err.Error())
	}

	ctx, span := otel.Tracer("pointpay/gateway").Start(ctx, "gateway.approve",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	result, err := breaker.Execute(func() (*gateway.Result, error) {
		r, callErr := client.Approve(ctx, gateway.ApproveRequest{
			OrderID:       req.OrderID,
			UserID:        userID.String(),
			Amount:        req.Amount,
			PaymentKey:    req.PaymentKey,
			TransactionID: req.TransactionID,
			PayerToken:    req.PayerToken,
		})
		if callErr != nil {
			return nil, callErr
		}
		if !r.Success {
			// Feed the breaker without surfacing the decline.
			return r, errGatewayDeclined
		}
		return r, nil
	})
	s.metrics.GatewayRequestDuration.WithLabelValues(string(req.Method)).Observe(time.Since(start).Seconds())
	if result == nil {
		// Breaker open or context error.
		s.metrics.GatewayRequestsTotal.WithLabelValues(string(req.Method), "error").Inc()
		return gateway.Fail(failureCode(req.Method), err.Error())
	}
	outcome := "success"
	if !result.Success {
		outcome = "declined"
	}
	s.metrics.GatewayRequestsTotal.WithLabelValues(string(req.Method), outcome).Inc()
	return result
}

// Refund refunds part or all of a successful payment. The per-payment
// lock plus the row lock inside the transaction serialize concurrent
// refunds so the completed total can never exceed the payment amount.
// Any completed refund marks the payment refunded, so at most one refund
// completes per payment.
func (s *PaymentService) Refund(ctx context.Context, userID uuid.UUID, paymentID uuid.UUID, req RefundPaymentRequest) error {
	return s.locks.WithLock(ctx, "payments:refund:"+paymentID.String(), func(ctx context.Context) error {
		return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
			p, err := s.ledger.Lock(txCtx, paymentID)
			if err != nil {
				return err
			}
			if p.UserID != userID {
				return domainErrors.ErrNotPaymentOwner
			}
			if !p.Refundable() {
				return domainErrors.ErrRefundNotAllowed
			}
			if req.Amount <= 0 || req.Amount > p.Amount {
				return domainErrors.ErrInvalidRefundAmount
			}
			refunded, err := s.ledger.CompletedRefundTotal(txCtx, p.ID)
			if err != nil {
				return err
			}
			if req.Amount > p.Amount-refunded {
				return domainErrors.ErrInvalidRefundAmount
			}
			balance, err := s.points.Balance(txCtx, userID)
			if err != nil {
				return err
			}
			if balance < req.Amount {
				return domainErrors.ErrInsufficientPointBalance
			}

			refund, err := payment.NewRefund(p.ID, req.Amount, req.Reason)
			if err != nil {
				return err
			}
			if err := s.ledger.CreateRefund(txCtx, refund.Completed()); err != nil {
				return err
			}

			p, err = payment.Transition(p, payment.Refunded{})
			if err != nil {
				return err
			}
			if err := s.ledger.Update(txCtx, p); err != nil {
				return err
			}

			if _, err := s.points.Debit(txCtx, userID, req.Amount); err != nil {
				return err
			}

			s.metrics.RefundsTotal.WithLabelValues("completed").Inc()
			s.logger.Info().Str("payment_id", p.ID.String()).Int64("amount", req.Amount).Msg("refund completed")
			return nil
		})
	})
}

// GetMyPayments returns the user's payments newest-first, each annotated
// with the current point balance.
func (s *PaymentService) GetMyPayments(ctx context.Context, userID uuid.UUID) ([]*PaymentView, error) {
	payments, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	balance, err := s.points.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*PaymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, newPaymentView(p, balance))
	}
	return views, nil
}

// GetBalance returns the user's current point balance.
func (s *PaymentService) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.points.Balance(ctx, userID)
}

func failureCode(m payment.Method) string {
	return strings.ToUpper(string(m)) + "_ERROR"
}

func derefOr(s *string, fallback string) string {
	if s != nil {
		return *s
	}
	return fallback
}
