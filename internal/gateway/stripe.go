package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ses9133/pointpay/internal/domain/payment"

	"github.com/rs/zerolog"
)

// StripeFailureCode is recorded on any stripe-side or transport failure.
const StripeFailureCode = "STRIPE_ERROR"

// StripeClient confirms payments the client side already collected: the
// frontend completes the provider flow and hands us a payment key, which
// the server confirms with a single synchronous call. Direct server-side
// creation is not supported for this method.
type StripeClient struct {
	baseURL   string
	secretKey string
	http      *http.Client
	logger    zerolog.Logger
}

func NewStripeClient(baseURL, secretKey string, timeout time.Duration, logger zerolog.Logger) *StripeClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &StripeClient{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: timeout},
		logger:    logger.With().Str("gateway", string(payment.MethodStripe)).Logger(),
	}
}

func (c *StripeClient) Name() string { return string(payment.MethodStripe) }

type stripeConfirmRequest struct {
	PaymentKey string `json:"payment_key"`
	OrderID    string `json:"order_id"`
	Amount     int64  `json:"amount"`
}

func (c *StripeClient) Approve(ctx context.Context, req ApproveRequest) (*Result, error) {
	body, err := json.Marshal(stripeConfirmRequest{
		PaymentKey: req.PaymentKey,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
	})
	if err != nil {
		return Fail(StripeFailureCode, fmt.Sprintf("encode confirm request: %v", err)), nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments/confirm", bytes.NewReader(body))
	if err != nil {
		return Fail(StripeFailureCode, fmt.Sprintf("build confirm request: %v", err)), nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.secretKey+":")))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn().Err(err).Str("order_id", req.OrderID).Msg("confirm call failed")
		return Fail(StripeFailureCode, err.Error()), nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("order_id", req.OrderID).Msg("confirm rejected")
		return Fail(StripeFailureCode, fmt.Sprintf("confirm returned status %d: %s", resp.StatusCode, truncate(raw, 200))), nil
	}

	c.logger.Info().Str("order_id", req.OrderID).Msg("confirm approved")
	return Ok(req.PaymentKey), nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
