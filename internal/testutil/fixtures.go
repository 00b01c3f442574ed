package testutil

import (
	"time"

	"github.com/ses9133/pointpay/internal/domain/payment"
	"github.com/ses9133/pointpay/internal/gateway"

	"github.com/google/uuid"
)

func NewTestPayment(userID uuid.UUID, method payment.Method, amount int64) payment.Payment {
	return payment.Payment{
		ID:          uuid.New(),
		UserID:      userID,
		OrderID:     payment.NewOrderID(),
		PaymentKey:  gateway.NewMockKey(),
		Amount:      amount,
		Method:      method,
		Status:      payment.StatusReady,
		ProductCode: "PRD-001",
		ProductName: "Test Product",
		RequestedAt: time.Now(),
	}
}

func NewSuccessfulPayment(userID uuid.UUID, method payment.Method, amount int64) payment.Payment {
	p := NewTestPayment(userID, method, amount)
	p.Status = payment.StatusSuccess
	approvedAt := time.Now()
	p.ApprovedAt = &approvedAt
	return p
}
