package service

import (
	"time"

	"github.com/ses9133/pointpay/internal/domain/payment"
	"github.com/ses9133/pointpay/internal/gateway"

	"github.com/google/uuid"
)

// CreatePaymentRequest holds the input for initiating a payment.
type CreatePaymentRequest struct {
	ProductCode string
	ProductName string
	Amount      int64
	Method      payment.Method
}

// CreatePaymentResponse is either a finished payment view (mock) or a
// provider redirect payload (two-phase methods); exactly one is set.
// OrderID accompanies the redirect so the caller can finish the flow
// through Approve.
type CreatePaymentResponse struct {
	Payment  *PaymentView
	OrderID  string
	Redirect *gateway.PrepareResult
}

// ApprovePaymentRequest holds the input for finalizing a payment. The
// method decides which credential fields are read.
type ApprovePaymentRequest struct {
	Method      payment.Method
	OrderID     string
	Amount      int64
	ProductCode string
	ProductName string

	// stripe / mock
	PaymentKey string

	// paypal
	TransactionID string
	PayerToken    string
}

// RefundPaymentRequest holds the input for refunding a payment.
type RefundPaymentRequest struct {
	Amount int64
	Reason string
}

// PaymentView is a payment annotated with the owner's current point
// balance.
type PaymentView struct {
	ID             uuid.UUID
	OrderID        string
	PaymentKey     string
	Amount         int64
	Method         payment.Method
	Status         payment.Status
	ProductCode    string
	ProductName    string
	FailureCode    *string
	FailureMessage *string
	PointBalance   int64
	RequestedAt    time.Time
	ApprovedAt     *time.Time
}

func newPaymentView(p payment.Payment, balance int64) *PaymentView {
	return &PaymentView{
		ID:             p.ID,
		OrderID:        p.OrderID,
		PaymentKey:     p.PaymentKey,
		Amount:         p.Amount,
		Method:         p.Method,
		Status:         p.Status,
		ProductCode:    p.ProductCode,
		ProductName:    p.ProductName,
		FailureCode:    p.FailureCode,
		FailureMessage: p.FailureMessage,
		PointBalance:   balance,
		RequestedAt:    p.RequestedAt,
		ApprovedAt:     p.ApprovedAt,
	}
}
