package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ses9133/pointpay/internal/domain/payment"
	"github.com/ses9133/pointpay/internal/gateway"
	"github.com/ses9133/pointpay/internal/infrastructure/observability"
	"github.com/ses9133/pointpay/internal/middleware"
	"github.com/ses9133/pointpay/internal/service"
	"github.com/ses9133/pointpay/internal/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupController() (*PaymentController, *testutil.MockPaymentRepository, *testutil.MockPointLedger) {
	paymentRepo := testutil.NewMockPaymentRepository()
	ledger := testutil.NewMockPointLedger()
	resolver := gateway.NewResolver(gateway.NewMockClient())
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())

	svc := service.NewPaymentService(
		paymentRepo, ledger,
		&testutil.MockTransactionManager{}, testutil.NewMockLockManager(),
		resolver, metrics, zerolog.Nop(),
	)
	return NewPaymentController(svc), paymentRepo, ledger
}

func authedRequest(method, target string, userID uuid.UUID, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreatePayment_Mock(t *testing.T) {
	handler, _, _ := setupController()
	userID := uuid.New()

	body, _ := json.Marshal(CreatePaymentRequest{
		ProductCode: "PRD-001",
		ProductName: "Coffee Beans",
		Amount:      5000,
		Method:      "mock",
	})
	req := authedRequest(http.MethodPost, "/api/v1/payments", userID, body)
	rec := httptest.NewRecorder()

	handler.CreatePayment(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp PaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, int64(5000), resp.Amount)
	assert.Equal(t, int64(5000), resp.PointBalance)
}

func TestCreatePayment_Unauthenticated(t *testing.T) {
	handler, _, _ := setupController()

	body, _ := json.Marshal(CreatePaymentRequest{
		ProductCode: "PRD-001",
		ProductName: "Coffee Beans",
		Amount:      5000,
		Method:      "mock",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreatePayment(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePayment_ValidationFailure(t *testing.T) {
	handler, _, _ := setupController()

	req := authedRequest(http.MethodPost, "/api/v1/payments", uuid.New(), []byte(`{"amount":5000}`))
	rec := httptest.NewRecorder()

	handler.CreatePayment(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePayment_StripeDirect(t *testing.T) {
	handler, _, _ := setupController()

	body, _ := json.Marshal(CreatePaymentRequest{
		ProductCode: "PRD-001",
		ProductName: "Coffee Beans",
		Amount:      5000,
		Method:      "stripe",
	})
	req := authedRequest(http.MethodPost, "/api/v1/payments", uuid.New(), body)
	rec := httptest.NewRecorder()

	handler.CreatePayment(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "direct_create_not_supported", resp.Code)
}

func TestApprovePayment_MockFlow(t *testing.T) {
	handler, repo, _ := setupController()
	userID := uuid.New()
	orderID := payment.NewOrderID()

	body, _ := json.Marshal(ApprovePaymentRequest{
		Method:      "mock",
		OrderID:     orderID,
		Amount:      8000,
		ProductCode: "PRD-002",
		ProductName: "Grinder",
	})
	req := authedRequest(http.MethodPost, "/api/v1/payments/approve", userID, body)
	rec := httptest.NewRecorder()

	handler.ApprovePayment(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp PaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, orderID, resp.OrderID)

	stored, err := repo.GetByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusSuccess, stored.Status)
}

func TestRefundPayment(t *testing.T) {
	handler, repo, ledger := setupController()
	userID := uuid.New()

	p := testutil.NewSuccessfulPayment(userID, payment.MethodMock, 5000)
	require.NoError(t, repo.Create(context.Background(), p))
	ledger.SetBalance(userID, 5000)

	body, _ := json.Marshal(RefundPaymentRequest{Amount: 2000, Reason: "wrong size"})
	req := authedRequest(http.MethodPost, "/api/v1/payments/"+p.ID.String()+"/refund", userID, body)
	req = withURLParam(req, "id", p.ID.String())
	rec := httptest.NewRecorder()

	handler.RefundPayment(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	balance, _ := ledger.Balance(context.Background(), userID)
	assert.Equal(t, int64(3000), balance)
}

func TestRefundPayment_InvalidID(t *testing.T) {
	handler, _, _ := setupController()

	body, _ := json.Marshal(RefundPaymentRequest{Amount: 2000})
	req := authedRequest(http.MethodPost, "/api/v1/payments/nope/refund", uuid.New(), body)
	req = withURLParam(req, "id", "nope")
	rec := httptest.NewRecorder()

	handler.RefundPayment(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefundPayment_NotOwner(t *testing.T) {
	handler, repo, ledger := setupController()
	owner := uuid.New()
	stranger := uuid.New()

	p := testutil.NewSuccessfulPayment(owner, payment.MethodMock, 5000)
	require.NoError(t, repo.Create(context.Background(), p))
	ledger.SetBalance(stranger, 5000)

	body, _ := json.Marshal(RefundPaymentRequest{Amount: 2000})
	req := authedRequest(http.MethodPost, "/api/v1/payments/"+p.ID.String()+"/refund", stranger, body)
	req = withURLParam(req, "id", p.ID.String())
	rec := httptest.NewRecorder()

	handler.RefundPayment(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListMyPayments(t *testing.T) {
	handler, repo, ledger := setupController()
	userID := uuid.New()
	ledger.SetBalance(userID, 1000)

	require.NoError(t, repo.Create(context.Background(), testutil.NewSuccessfulPayment(userID, payment.MethodMock, 5000)))
	require.NoError(t, repo.Create(context.Background(), testutil.NewSuccessfulPayment(uuid.New(), payment.MethodMock, 9000)))

	req := authedRequest(http.MethodGet, "/api/v1/payments", userID, nil)
	rec := httptest.NewRecorder()

	handler.ListMyPayments(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []*PaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, int64(5000), resp[0].Amount)
}

func TestGetBalance(t *testing.T) {
	handler, _, ledger := setupController()
	userID := uuid.New()
	ledger.SetBalance(userID, 4321)

	req := authedRequest(http.MethodGet, "/api/v1/points/balance", userID, nil)
	rec := httptest.NewRecorder()

	handler.GetBalance(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(4321), resp.PointBalance)
}
