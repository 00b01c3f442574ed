package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domainErrors "github.com/ses9133/pointpay/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]string{"message": "hello"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"hello"}`, rec.Body.String())
}

func TestWriteError_Mappings(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"payment not found", domainErrors.ErrPaymentNotFound, http.StatusNotFound, "not_found"},
		{"user not found", domainErrors.ErrUserNotFound, http.StatusNotFound, "not_found"},
		{"not owner", domainErrors.ErrNotPaymentOwner, http.StatusForbidden, "forbidden"},
		{"refund not allowed", domainErrors.ErrRefundNotAllowed, http.StatusConflict, "refund_not_allowed"},
		{"invalid transition", domainErrors.ErrInvalidStateTransition, http.StatusConflict, "invalid_state_transition"},
		{"duplicate key", domainErrors.ErrDuplicatePaymentKey, http.StatusConflict, "duplicate_payment_key"},
		{"invalid refund amount", domainErrors.ErrInvalidRefundAmount, http.StatusUnprocessableEntity, "invalid_refund_amount"},
		{"insufficient balance", domainErrors.ErrInsufficientPointBalance, http.StatusUnprocessableEntity, "insufficient_point_balance"},
		{"below minimum", domainErrors.ErrAmountBelowMinimum, http.StatusBadRequest, "amount_below_minimum"},
		{"unsupported method", domainErrors.ErrUnsupportedMethod, http.StatusBadRequest, "unsupported_method"},
		{"direct create", domainErrors.ErrDirectCreateNotSupported, http.StatusBadRequest, "direct_create_not_supported"},
		{"gateway down", domainErrors.ErrGatewayUnavailable, http.StatusServiceUnavailable, "gateway_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedCode, resp.Code)
		})
	}
}

func TestWriteError_WrappedSentinel(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, domainErrors.NewDomainError("gateway_unavailable", "prepare failed", domainErrors.ErrGatewayUnavailable))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWriteError_ValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, domainErrors.NewValidationError("amount", "must be positive"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Code)
}

func TestWriteError_Unknown(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("database exploded"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internal details must not leak to the client.
	assert.NotContains(t, rec.Body.String(), "exploded")
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{"product_code":"PRD-001","product_name":"Coffee","amount":5000,"method":"mock"}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))

	var dst CreatePaymentRequest
	require.NoError(t, decodeAndValidate(req, &dst))
	assert.Equal(t, int64(5000), dst.Amount)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))

	var dst CreatePaymentRequest
	err := decodeAndValidate(req, &dst)
	var ve *domainErrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestDecodeAndValidate_FailsValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing method", `{"product_code":"PRD-001","product_name":"Coffee","amount":5000}`},
		{"bad method", `{"product_code":"PRD-001","product_name":"Coffee","amount":5000,"method":"wire"}`},
		{"zero amount", `{"product_code":"PRD-001","product_name":"Coffee","amount":0,"method":"mock"}`},
		{"missing product", `{"amount":5000,"method":"mock"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst CreatePaymentRequest
			assert.Error(t, decodeAndValidate(req, &dst))
		})
	}
}
