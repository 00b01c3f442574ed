package payment_test

import (
	"testing"

	"github.com/ses9133/pointpay/internal/domain/errors"
	"github.com/ses9133/pointpay/internal/domain/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReadyPayment(t *testing.T) payment.Payment {
	t.Helper()
	p, err := payment.New(uuid.New(), payment.NewOrderID(), 5000, payment.MethodMock, "PRD-001", "Coffee Beans")
	require.NoError(t, err)
	return p
}

func TestNew_Valid(t *testing.T) {
	userID := uuid.New()
	p, err := payment.New(userID, "ORD-abc", 5000, payment.MethodStripe, "PRD-001", "Coffee Beans")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusReady, p.Status)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, "ORD-abc", p.OrderID)
	assert.Equal(t, int64(5000), p.Amount)
	assert.Empty(t, p.PaymentKey)
	assert.Nil(t, p.ApprovedAt)
	assert.False(t, p.RequestedAt.IsZero())
}

func TestNew_BelowMinimumAmount(t *testing.T) {
	_, err := payment.New(uuid.New(), "ORD-abc", payment.MinAmount-1, payment.MethodMock, "PRD-001", "Coffee Beans")
	assert.ErrorIs(t, err, errors.ErrAmountBelowMinimum)
}

func TestNew_MinimumAmountAccepted(t *testing.T) {
	_, err := payment.New(uuid.New(), "ORD-abc", payment.MinAmount, payment.MethodMock, "PRD-001", "Coffee Beans")
	assert.NoError(t, err)
}

func TestNew_EmptyOrderID(t *testing.T) {
	_, err := payment.New(uuid.New(), "", 5000, payment.MethodMock, "PRD-001", "Coffee Beans")
	var ve *errors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestNew_EmptyProductFields(t *testing.T) {
	_, err := payment.New(uuid.New(), "ORD-abc", 5000, payment.MethodMock, "", "Coffee Beans")
	assert.Error(t, err)

	_, err = payment.New(uuid.New(), "ORD-abc", 5000, payment.MethodMock, "PRD-001", "")
	assert.Error(t, err)
}

func TestParseMethod(t *testing.T) {
	for _, m := range payment.Methods() {
		parsed, err := payment.ParseMethod(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	_, err := payment.ParseMethod("wire")
	assert.ErrorIs(t, err, errors.ErrUnsupportedMethod)
}

func TestNewOrderID_Prefix(t *testing.T) {
	id := payment.NewOrderID()
	assert.Contains(t, id, "ORD-")
	assert.NotEqual(t, id, payment.NewOrderID())
}

// --- Transition Tests ---

func TestTransition_Approved(t *testing.T) {
	p := newReadyPayment(t)

	approved, err := payment.Transition(p, payment.Approved{PaymentKey: "key-1"})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusSuccess, approved.Status)
	assert.Equal(t, "key-1", approved.PaymentKey)
	assert.NotNil(t, approved.ApprovedAt)

	// The input value is untouched.
	assert.Equal(t, payment.StatusReady, p.Status)
	assert.Empty(t, p.PaymentKey)
}

func TestTransition_Approved_EmptyKey(t *testing.T) {
	p := newReadyPayment(t)

	_, err := payment.Transition(p, payment.Approved{})
	assert.Error(t, err)
}

func TestTransition_Declined(t *testing.T) {
	p := newReadyPayment(t)

	declined, err := payment.Transition(p, payment.Declined{Code: "CARD_DECLINED", Message: "card declined"})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, declined.Status)
	require.NotNil(t, declined.FailureCode)
	assert.Equal(t, "CARD_DECLINED", *declined.FailureCode)
	require.NotNil(t, declined.FailureMessage)
	assert.Equal(t, "card declined", *declined.FailureMessage)

	// Declines never carry a provider key, so one is generated to keep
	// the key unique across failed rows.
	assert.Contains(t, declined.PaymentKey, "FAIL-")
	again, err := payment.Transition(newReadyPayment(t), payment.Declined{Code: "CARD_DECLINED", Message: "card declined"})
	require.NoError(t, err)
	assert.NotEqual(t, declined.PaymentKey, again.PaymentKey)
}

func TestTransition_Refunded(t *testing.T) {
	p := newReadyPayment(t)
	p, err := payment.Transition(p, payment.Approved{PaymentKey: "key-1"})
	require.NoError(t, err)

	refunded, err := payment.Transition(p, payment.Refunded{})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusRefunded, refunded.Status)
	assert.NotNil(t, refunded.CancelledAt)
}

func TestTransition_IllegalEdges(t *testing.T) {
	ready := newReadyPayment(t)
	success, err := payment.Transition(ready, payment.Approved{PaymentKey: "key-1"})
	require.NoError(t, err)
	failed, err := payment.Transition(newReadyPayment(t), payment.Declined{Code: "X", Message: "x"})
	require.NoError(t, err)
	refunded, err := payment.Transition(success, payment.Refunded{})
	require.NoError(t, err)

	cases := []struct {
		name string
		p    payment.Payment
		ev   payment.Event
	}{
		{"approve a success", success, payment.Approved{PaymentKey: "key-2"}},
		{"approve a failed", failed, payment.Approved{PaymentKey: "key-2"}},
		{"decline a success", success, payment.Declined{Code: "X", Message: "x"}},
		{"refund a ready", ready, payment.Refunded{}},
		{"refund a failed", failed, payment.Refunded{}},
		{"refund twice", refunded, payment.Refunded{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := payment.Transition(tc.p, tc.ev)
			assert.ErrorIs(t, err, errors.ErrInvalidStateTransition)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	p := newReadyPayment(t)
	assert.False(t, p.IsTerminal())

	success, _ := payment.Transition(p, payment.Approved{PaymentKey: "key-1"})
	assert.False(t, success.IsTerminal())
	assert.True(t, success.Refundable())

	failed, _ := payment.Transition(newReadyPayment(t), payment.Declined{Code: "X", Message: "x"})
	assert.True(t, failed.IsTerminal())
	assert.False(t, failed.Refundable())

	refunded, _ := payment.Transition(success, payment.Refunded{})
	assert.True(t, refunded.IsTerminal())
	assert.False(t, refunded.Refundable())
}
