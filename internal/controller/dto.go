package controller

import (
	"time"

	"github.com/ses9133/pointpay/internal/gateway"
	"github.com/ses9133/pointpay/internal/service"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (string methods, validation tags).
// Controllers convert these to service layer DTOs before calling business logic.

// CreatePaymentRequest holds the input for initiating a payment.
type CreatePaymentRequest struct {
	ProductCode string `json:"product_code" validate:"required"`
	ProductName string `json:"product_name" validate:"required"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Method      string `json:"method" validate:"required,oneof=mock stripe paypal"`
}

// ApprovePaymentRequest holds the input for finalizing a payment after
// the client completed the provider flow. Which credential fields are
// read depends on the method.
type ApprovePaymentRequest struct {
	Method      string `json:"method" validate:"required,oneof=mock stripe paypal"`
	OrderID     string `json:"order_id" validate:"required"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	ProductCode string `json:"product_code" validate:"required"`
	ProductName string `json:"product_name" validate:"required"`

	PaymentKey    string `json:"payment_key,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	PayerToken    string `json:"payer_token,omitempty"`
}

// RefundPaymentRequest holds the input for refunding a payment.
type RefundPaymentRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"max=500"`
}

// --- Response DTOs ---

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID             string     `json:"id"`
	OrderID        string     `json:"order_id"`
	PaymentKey     string     `json:"payment_key,omitempty"`
	Amount         int64      `json:"amount"`
	Method         string     `json:"method"`
	Status         string     `json:"status"`
	ProductCode    string     `json:"product_code"`
	ProductName    string     `json:"product_name"`
	FailureCode    *string    `json:"failure_code,omitempty"`
	FailureMessage *string    `json:"failure_message,omitempty"`
	PointBalance   int64      `json:"point_balance"`
	RequestedAt    time.Time  `json:"requested_at"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
}

// CheckoutResponse represents a hosted-redirect checkout session.
type CheckoutResponse struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	RedirectPCURL     string `json:"redirect_pc_url"`
	RedirectMobileURL string `json:"redirect_mobile_url,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
}

// BalanceResponse represents a user's point balance.
type BalanceResponse struct {
	PointBalance int64 `json:"point_balance"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromPaymentView converts a service payment view to API response.
func FromPaymentView(v *service.PaymentView) *PaymentResponse {
	return &PaymentResponse{
		ID:             v.ID.String(),
		OrderID:        v.OrderID,
		PaymentKey:     v.PaymentKey,
		Amount:         v.Amount,
		Method:         string(v.Method),
		Status:         string(v.Status),
		ProductCode:    v.ProductCode,
		ProductName:    v.ProductName,
		FailureCode:    v.FailureCode,
		FailureMessage: v.FailureMessage,
		PointBalance:   v.PointBalance,
		RequestedAt:    v.RequestedAt,
		ApprovedAt:     v.ApprovedAt,
	}
}

// FromCheckout converts a provider redirect payload to API response.
func FromCheckout(orderID string, r *gateway.PrepareResult) *CheckoutResponse {
	return &CheckoutResponse{
		OrderID:           orderID,
		TransactionID:     r.TransactionID,
		RedirectPCURL:     r.RedirectPCURL,
		RedirectMobileURL: r.RedirectMobileURL,
		CreatedAt:         r.CreatedAt,
	}
}
