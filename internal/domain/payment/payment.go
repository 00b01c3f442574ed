package payment

import (
	"fmt"
	"time"

	"github.com/ses9133/pointpay/internal/domain/errors"

	"github.com/google/uuid"
)

// Method represents the payment method used for a purchase.
type Method string

const (
	MethodMock   Method = "mock"
	MethodStripe Method = "stripe"
	MethodPayPal Method = "paypal"
)

// Methods lists every supported payment method.
func Methods() []Method {
	return []Method{MethodMock, MethodStripe, MethodPayPal}
}

// ParseMethod validates a raw method string.
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	switch m {
	case MethodMock, MethodStripe, MethodPayPal:
		return m, nil
	}
	return "", fmt.Errorf("method %q: %w", s, errors.ErrUnsupportedMethod)
}

// Status represents the payment status in the state machine.
//
// StatusReady is transient: a payment exists in memory between creation and
// the gateway round-trip, but only success, failed and refunded rows are
// ever persisted.
type Status string

const (
	StatusReady    Status = "ready"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// MinAmount is the smallest accepted payment amount, in the smallest
// currency unit.
const MinAmount int64 = 100

// Payment represents one purchase attempt. It is treated as an immutable
// value: status changes go through Transition, which returns the updated
// copy and rejects illegal edges.
type Payment struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	OrderID string
	// PaymentKey is the provider-assigned (or internally generated) key,
	// globally unique across all payments.
	PaymentKey     string
	Amount         int64
	Method         Method
	Status         Status
	ProductCode    string
	ProductName    string
	FailureCode    *string
	FailureMessage *string
	RequestedAt    time.Time
	ApprovedAt     *time.Time
	CancelledAt    *time.Time
}

// New creates a payment in the transient ready state.
func New(userID uuid.UUID, orderID string, amount int64, method Method, productCode, productName string) (Payment, error) {
	if amount < MinAmount {
		return Payment{}, errors.ErrAmountBelowMinimum
	}
	if orderID == "" {
		return Payment{}, errors.NewValidationError("order_id", "cannot be empty")
	}
	if productCode == "" {
		return Payment{}, errors.NewValidationError("product_code", "cannot be empty")
	}
	if productName == "" {
		return Payment{}, errors.NewValidationError("product_name", "cannot be empty")
	}

	return Payment{
		ID:          uuid.New(),
		UserID:      userID,
		OrderID:     orderID,
		Amount:      amount,
		Method:      method,
		Status:      StatusReady,
		ProductCode: productCode,
		ProductName: productName,
		RequestedAt: time.Now(),
	}, nil
}

// NewOrderID generates a merchant-side order identifier.
func NewOrderID() string {
	return "ORD-" + uuid.New().String()
}

// NewFailureKey generates a key for a declined payment. Declines carry no
// provider key, but every persisted row needs a globally unique one.
func NewFailureKey() string {
	return "FAIL-" + uuid.New().String()
}

// Event is a state machine input. The set of events is closed: Approved,
// Declined and Refunded are the only ways a payment changes status.
type Event interface {
	isEvent()
}

// Approved records a successful gateway approval carrying the provider key.
type Approved struct {
	PaymentKey string
}

// Declined records a gateway-reported or transport failure.
type Declined struct {
	Code    string
	Message string
}

// Refunded records a completed refund against the payment.
type Refunded struct{}

func (Approved) isEvent() {}
func (Declined) isEvent() {}
func (Refunded) isEvent() {}

// Transition applies ev to p and returns the updated payment. Only the
// legal edges are allowed:
//
//	ready   --Approved--> success
//	ready   --Declined--> failed
//	success --Refunded--> refunded
func Transition(p Payment, ev Event) (Payment, error) {
	switch e := ev.(type) {
	case Approved:
		if p.Status != StatusReady {
			return p, transitionError(p.Status, StatusSuccess)
		}
		if e.PaymentKey == "" {
			return p, errors.NewValidationError("payment_key", "cannot be empty")
		}
		now := time.Now()
		p.Status = StatusSuccess
		p.PaymentKey = e.PaymentKey
		p.ApprovedAt = &now
		p.FailureCode = nil
		p.FailureMessage = nil
		return p, nil

	case Declined:
		if p.Status != StatusReady {
			return p, transitionError(p.Status, StatusFailed)
		}
		p.Status = StatusFailed
		if p.PaymentKey == "" {
			p.PaymentKey = NewFailureKey()
		}
		code, msg := e.Code, e.Message
		p.FailureCode = &code
		p.FailureMessage = &msg
		return p, nil

	case Refunded:
		if p.Status != StatusSuccess {
			return p, transitionError(p.Status, StatusRefunded)
		}
		now := time.Now()
		p.Status = StatusRefunded
		p.CancelledAt = &now
		return p, nil

	default:
		return p, fmt.Errorf("unknown payment event %T: %w", ev, errors.ErrInvalidStateTransition)
	}
}

func transitionError(from, to Status) error {
	return errors.NewDomainError(
		"invalid_transition",
		fmt.Sprintf("cannot transition from %s to %s", from, to),
		errors.ErrInvalidStateTransition,
	)
}

// IsTerminal reports whether the payment can still change status.
func (p Payment) IsTerminal() bool {
	return p.Status == StatusFailed || p.Status == StatusRefunded
}

// Refundable reports whether a refund may be opened against the payment.
func (p Payment) Refundable() bool {
	return p.Status == StatusSuccess
}
