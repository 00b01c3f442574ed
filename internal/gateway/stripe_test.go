package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripeClient_Approve_Success(t *testing.T) {
	var gotAuth string
	var gotBody stripeConfirmRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payments/confirm", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"DONE"}`))
	}))
	defer srv.Close()

	client := NewStripeClient(srv.URL, "sk_test_secret", 5*time.Second, zerolog.Nop())

	result, err := client.Approve(context.Background(), ApproveRequest{
		OrderID:    "ORD-1",
		Amount:     5000,
		PaymentKey: "pk-1",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "pk-1", result.PaymentKey)

	expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("sk_test_secret:"))
	assert.Equal(t, expectedAuth, gotAuth)
	assert.Equal(t, "ORD-1", gotBody.OrderID)
	assert.Equal(t, int64(5000), gotBody.Amount)
	assert.Equal(t, "pk-1", gotBody.PaymentKey)
}

func TestStripeClient_Approve_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"INVALID_KEY"}`))
	}))
	defer srv.Close()

	client := NewStripeClient(srv.URL, "sk_test_secret", 5*time.Second, zerolog.Nop())

	result, err := client.Approve(context.Background(), ApproveRequest{
		OrderID:    "ORD-1",
		Amount:     5000,
		PaymentKey: "pk-bad",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, StripeFailureCode, result.FailureCode)
	assert.Contains(t, result.FailureMessage, "status 400")
}

func TestStripeClient_Approve_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewStripeClient(srv.URL, "sk_test_secret", time.Second, zerolog.Nop())

	result, err := client.Approve(context.Background(), ApproveRequest{
		OrderID:    "ORD-1",
		Amount:     5000,
		PaymentKey: "pk-1",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, StripeFailureCode, result.FailureCode)
}

func TestStripeClient_Approve_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewStripeClient(srv.URL, "sk_test_secret", 5*time.Second, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Approve(ctx, ApproveRequest{OrderID: "ORD-1", Amount: 5000, PaymentKey: "pk-1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate([]byte("short"), 10))
	assert.Equal(t, "abc...", truncate([]byte("abcdef"), 3))
}
