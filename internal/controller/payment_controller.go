package controller

import (
	"net/http"

	"github.com/ses9133/pointpay/internal/domain/payment"
	"github.com/ses9133/pointpay/internal/middleware"
	"github.com/ses9133/pointpay/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PaymentController handles payment-related HTTP requests.
type PaymentController struct {
	paymentService *service.PaymentService
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentService}
}

// CreatePayment handles POST /api/v1/payments
func (h *PaymentController) CreatePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "auth_required"})
		return
	}

	var req CreatePaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	method, err := payment.ParseMethod(req.Method)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.paymentService.Create(r.Context(), userID, service.CreatePaymentRequest{
		ProductCode: req.ProductCode,
		ProductName: req.ProductName,
		Amount:      req.Amount,
		Method:      method,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if resp.Redirect != nil {
		writeJSON(w, http.StatusCreated, FromCheckout(resp.OrderID, resp.Redirect))
		return
	}
	writeJSON(w, http.StatusCreated, FromPaymentView(resp.Payment))
}

// ApprovePayment handles POST /api/v1/payments/approve
func (h *PaymentController) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "auth_required"})
		return
	}

	var req ApprovePaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	method, err := payment.ParseMethod(req.Method)
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.paymentService.Approve(r.Context(), userID, service.ApprovePaymentRequest{
		Method:        method,
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		ProductCode:   req.ProductCode,
		ProductName:   req.ProductName,
		PaymentKey:    req.PaymentKey,
		TransactionID: req.TransactionID,
		PayerToken:    req.PayerToken,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromPaymentView(view))
}

// ListMyPayments handles GET /api/v1/payments
func (h *PaymentController) ListMyPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "auth_required"})
		return
	}

	views, err := h.paymentService.GetMyPayments(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*PaymentResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, FromPaymentView(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

// RefundPayment handles POST /api/v1/payments/{id}/refund
func (h *PaymentController) RefundPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "auth_required"})
		return
	}

	paymentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid payment id", Code: "invalid_id"})
		return
	}

	var req RefundPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.paymentService.Refund(r.Context(), userID, paymentID, service.RefundPaymentRequest{
		Amount: req.Amount,
		Reason: req.Reason,
	}); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "refunded"})
}

// GetBalance handles GET /api/v1/points/balance
func (h *PaymentController) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "auth_required"})
		return
	}

	balance, err := h.paymentService.GetBalance(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{PointBalance: balance})
}
