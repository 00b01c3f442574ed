package testutil

import (
	"context"
	"sort"
	"sync"

	domainErrors "github.com/ses9133/pointpay/internal/domain/errors"
	"github.com/ses9133/pointpay/internal/domain/payment"

	"github.com/google/uuid"
)

// --- Payment Repository Mock ---

// MockPaymentRepository is an in-memory implementation of payment.Repository.
type MockPaymentRepository struct {
	mu       sync.Mutex
	payments map[uuid.UUID]payment.Payment
	byOrder  map[string]uuid.UUID
	byKey    map[string]uuid.UUID
	refunds  map[uuid.UUID][]payment.Refund

	CreateFunc               func(ctx context.Context, p payment.Payment) error
	GetByOrderIDFunc         func(ctx context.Context, orderID string) (payment.Payment, error)
	UpdateFunc               func(ctx context.Context, p payment.Payment) error
	LockFunc                 func(ctx context.Context, id uuid.UUID) (payment.Payment, error)
	CreateRefundFunc         func(ctx context.Context, r payment.Refund) error
	CompletedRefundTotalFunc func(ctx context.Context, paymentID uuid.UUID) (int64, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[uuid.UUID]payment.Payment),
		byOrder:  make(map[string]uuid.UUID),
		byKey:    make(map[string]uuid.UUID),
		refunds:  make(map[uuid.UUID][]payment.Refund),
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, p payment.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byKey[p.PaymentKey]; exists {
		return domainErrors.ErrDuplicatePaymentKey
	}
	if _, exists := m.byOrder[p.OrderID]; exists {
		return domainErrors.ErrDuplicatePaymentKey
	}
	m.payments[p.ID] = p
	m.byOrder[p.OrderID] = p.ID
	m.byKey[p.PaymentKey] = p.ID
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return payment.Payment{}, domainErrors.ErrPaymentNotFound
	}
	return p, nil
}

func (m *MockPaymentRepository) GetByOrderID(ctx context.Context, orderID string) (payment.Payment, error) {
	if m.GetByOrderIDFunc != nil {
		return m.GetByOrderIDFunc(ctx, orderID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byOrder[orderID]
	if !ok {
		return payment.Payment{}, domainErrors.ErrPaymentNotFound
	}
	return m.payments[id], nil
}

func (m *MockPaymentRepository) GetByPaymentKey(ctx context.Context, key string) (payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byKey[key]
	if !ok {
		return payment.Payment{}, domainErrors.ErrPaymentNotFound
	}
	return m.payments[id], nil
}

func (m *MockPaymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []payment.Payment
	for _, p := range m.payments {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].RequestedAt.Equal(result[j].RequestedAt) {
			return result[i].RequestedAt.After(result[j].RequestedAt)
		}
		return result[i].ID.String() > result[j].ID.String()
	})
	return result, nil
}

func (m *MockPaymentRepository) Update(ctx context.Context, p payment.Payment) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[p.ID]; !ok {
		return domainErrors.ErrPaymentNotFound
	}
	m.payments[p.ID] = p
	return nil
}

func (m *MockPaymentRepository) Lock(ctx context.Context, id uuid.UUID) (payment.Payment, error) {
	if m.LockFunc != nil {
		return m.LockFunc(ctx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockPaymentRepository) CreateRefund(ctx context.Context, r payment.Refund) error {
	if m.CreateRefundFunc != nil {
		return m.CreateRefundFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refunds[r.PaymentID] = append(m.refunds[r.PaymentID], r)
	return nil
}

func (m *MockPaymentRepository) ListRefunds(ctx context.Context, paymentID uuid.UUID) ([]payment.Refund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]payment.Refund(nil), m.refunds[paymentID]...), nil
}

func (m *MockPaymentRepository) CompletedRefundTotal(ctx context.Context, paymentID uuid.UUID) (int64, error) {
	if m.CompletedRefundTotalFunc != nil {
		return m.CompletedRefundTotalFunc(ctx, paymentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, r := range m.refunds[paymentID] {
		if r.Status == payment.RefundCompleted {
			total += r.Amount
		}
	}
	return total, nil
}

// --- Point Ledger Mock ---

// MockPointLedger is an in-memory implementation of point.Ledger.
type MockPointLedger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64

	CreditFunc func(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
	DebitFunc  func(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
}

func NewMockPointLedger() *MockPointLedger {
	return &MockPointLedger{balances: make(map[uuid.UUID]int64)}
}

// SetBalance seeds a user's balance.
func (m *MockPointLedger) SetBalance(userID uuid.UUID, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = balance
}

func (m *MockPointLedger) Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if m.CreditFunc != nil {
		return m.CreditFunc(ctx, userID, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] += amount
	return m.balances[userID], nil
}

func (m *MockPointLedger) Debit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if m.DebitFunc != nil {
		return m.DebitFunc(ctx, userID, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[userID] < amount {
		return 0, domainErrors.ErrInsufficientPointBalance
	}
	m.balances[userID] -= amount
	return m.balances[userID], nil
}

func (m *MockPointLedger) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID], nil
}

// --- Transaction Manager Mock ---

// MockTransactionManager runs the function directly without a real transaction.
type MockTransactionManager struct {
	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// --- Lock Manager Mock ---

// MockLockManager serializes sections with a process-local mutex.
type MockLockManager struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex

	WithLockFunc func(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

func NewMockLockManager() *MockLockManager {
	return &MockLockManager{locks: make(map[string]*sync.Mutex)}
}

func (m *MockLockManager) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if m.WithLockFunc != nil {
		return m.WithLockFunc(ctx, key, fn)
	}
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.mu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn(ctx)
}
