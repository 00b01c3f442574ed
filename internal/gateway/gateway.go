package gateway

import (
	"context"
)

// Result is the normalized outcome of a gateway approval call. Every
// provider-specific response, transport error or non-2xx status is folded
// into this shape; clients never surface a raw transport error.
type Result struct {
	Success        bool
	PaymentKey     string
	FailureCode    string
	FailureMessage string
}

// Ok builds a successful result carrying the provider key.
func Ok(paymentKey string) *Result {
	return &Result{Success: true, PaymentKey: paymentKey}
}

// Fail builds a failed result with a provider-scoped failure code.
func Fail(code, message string) *Result {
	return &Result{Success: false, FailureCode: code, FailureMessage: message}
}

// ApproveRequest carries the fields an approval call may need. Which
// fields are read depends on the method: mock and stripe use PaymentKey,
// paypal uses TransactionID and PayerToken.
type ApproveRequest struct {
	OrderID string
	UserID  string
	Amount  int64

	// stripe / mock
	PaymentKey string

	// paypal
	TransactionID string
	PayerToken    string
}

// Client is the per-method gateway contract. Implementations perform a
// single synchronous outbound call and normalize the outcome; no local
// state is mutated.
type Client interface {
	// Name returns the method identifier the client serves.
	Name() string
	// Approve performs the external approval call. The returned error is
	// reserved for context cancellation; provider and transport failures
	// come back inside the Result.
	Approve(ctx context.Context, req ApproveRequest) (*Result, error)
}

// PrepareRequest carries the fields for a hosted-redirect preparation
// call (two-phase providers only).
type PrepareRequest struct {
	OrderID     string
	UserID      string
	Amount      int64
	ProductName string
}

// PrepareResult is the provider's redirect/session payload returned to
// the caller before any payment row exists.
type PrepareResult struct {
	TransactionID     string `json:"transaction_id"`
	RedirectPCURL     string `json:"redirect_pc_url"`
	RedirectMobileURL string `json:"redirect_mobile_url"`
	CreatedAt         string `json:"created_at"`
}

// Preparer is implemented by clients whose provider requires a hosted
// redirect step before approval.
type Preparer interface {
	Prepare(ctx context.Context, req PrepareRequest) (*PrepareResult, error)
}
