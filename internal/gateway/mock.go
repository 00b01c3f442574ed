package gateway

import (
	"context"

	"github.com/ses9133/pointpay/internal/domain/payment"

	"github.com/google/uuid"
)

// MockKeyPrefix identifies keys issued by the mock client.
const MockKeyPrefix = "MOCK-"

// MockClient approves every payment without network I/O. Used for demo
// flows and tests.
type MockClient struct {
	approveFn func(req ApproveRequest) (*Result, error)
}

type MockClientOption func(*MockClient)

// WithApproveFunc overrides the approval behavior, letting tests script
// failures.
func WithApproveFunc(fn func(req ApproveRequest) (*Result, error)) MockClientOption {
	return func(c *MockClient) { c.approveFn = fn }
}

func NewMockClient(opts ...MockClientOption) *MockClient {
	c := &MockClient{}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *MockClient) Name() string { return string(payment.MethodMock) }

// NewMockKey generates a fresh synthetic provider key.
func NewMockKey() string {
	return MockKeyPrefix + uuid.New().String()
}

func (c *MockClient) Approve(ctx context.Context, req ApproveRequest) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.approveFn != nil {
		return c.approveFn(req)
	}
	return Ok(NewMockKey()), nil
}
