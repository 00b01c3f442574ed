package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ses9133/pointpay/internal/domain/payment"

	"github.com/rs/zerolog"
)

// PayPalFailureCode is recorded on any paypal-side or transport failure.
const PayPalFailureCode = "PAYPAL_ERROR"

// PayPalClient drives the hosted-redirect flow: Prepare opens a checkout
// session and returns the redirect payload, the user approves on the
// provider's page, and Approve captures with the session's transaction id
// plus the payer token the redirect carried back.
type PayPalClient struct {
	baseURL      string
	clientSecret string
	// redirectBase is the frontend origin the provider redirects back to.
	redirectBase string
	http         *http.Client
	logger       zerolog.Logger
}

func NewPayPalClient(baseURL, clientSecret, redirectBase string, timeout time.Duration, logger zerolog.Logger) *PayPalClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PayPalClient{
		baseURL:      baseURL,
		clientSecret: clientSecret,
		redirectBase: strings.TrimSuffix(redirectBase, "/"),
		http:         &http.Client{Timeout: timeout},
		logger:       logger.With().Str("gateway", string(payment.MethodPayPal)).Logger(),
	}
}

func (c *PayPalClient) Name() string { return string(payment.MethodPayPal) }

// Prepare opens a checkout session. Unlike Approve, failures here are
// returned as errors: there is no payment row yet to record them on.
func (c *PayPalClient) Prepare(ctx context.Context, req PrepareRequest) (*PrepareResult, error) {
	approvalURL := fmt.Sprintf("%s/pay/paypal/success?orderId=%s&amount=%d",
		c.redirectBase, url.QueryEscape(req.OrderID), req.Amount)

	form := url.Values{}
	form.Set("order_id", req.OrderID)
	form.Set("user_id", req.UserID)
	form.Set("item_name", req.ProductName)
	form.Set("quantity", "1")
	form.Set("total_amount", strconv.FormatInt(req.Amount, 10))
	form.Set("approval_url", approvalURL)
	form.Set("cancel_url", c.redirectBase+"/pay/paypal/cancel")
	form.Set("fail_url", c.redirectBase+"/pay/paypal/fail")

	raw, err := c.post(ctx, "/v1/checkout/orders", form)
	if err != nil {
		return nil, fmt.Errorf("checkout prepare: %w", err)
	}

	var result PrepareResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode prepare response: %w", err)
	}

	c.logger.Info().Str("order_id", req.OrderID).Str("transaction_id", result.TransactionID).Msg("checkout session opened")
	return &result, nil
}

func (c *PayPalClient) Approve(ctx context.Context, req ApproveRequest) (*Result, error) {
	form := url.Values{}
	form.Set("transaction_id", req.TransactionID)
	form.Set("order_id", req.OrderID)
	form.Set("user_id", req.UserID)
	form.Set("payer_token", req.PayerToken)

	if _, err := c.post(ctx, "/v1/checkout/orders/capture", form); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn().Err(err).Str("order_id", req.OrderID).Msg("capture failed")
		return Fail(PayPalFailureCode, err.Error()), nil
	}

	c.logger.Info().Str("order_id", req.OrderID).Msg("capture approved")
	return Ok(req.TransactionID), nil
}

func (c *PayPalClient) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "Bearer "+c.clientSecret)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw, 200))
	}
	return raw, nil
}
