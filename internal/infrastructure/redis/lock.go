package redis

import (
	"context"
	"fmt"
	"time"

	domainErrors "github.com/ses9133/pointpay/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lua script for safe lock release (only owner can release)
var releaseLockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// DistributedLock represents a distributed lock using Redis
type DistributedLock struct {
	client   *redis.Client
	key      string
	value    string
	ttl      time.Duration
	acquired bool
}

// NewDistributedLock creates a new distributed lock
func NewDistributedLock(client *redis.Client, key string, ttl time.Duration) *DistributedLock {
	return &DistributedLock{
		client: client,
		key:    fmt.Sprintf("lock:%s", key),
		value:  uuid.New().String(),
		ttl:    ttl,
	}
}

// Acquire attempts to acquire the lock
func (l *DistributedLock) Acquire(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	l.acquired = success
	return success, nil
}

// AcquireWithRetry attempts to acquire the lock with retries
func (l *DistributedLock) AcquireWithRetry(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		acquired, err := l.Acquire(ctx)
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return domainErrors.ErrLockAcquisitionFailed
}

// Release releases the lock
func (l *DistributedLock) Release(ctx context.Context) error {
	if !l.acquired {
		return nil
	}

	result, err := releaseLockScript.Run(ctx, l.client, []string{l.key}, l.value).Result()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if val, ok := result.(int64); !ok || val == 0 {
		return fmt.Errorf("lock not held or already released")
	}

	l.acquired = false
	return nil
}

// LockManager hands out short-lived distributed locks keyed by name. It
// satisfies the orchestrator's LockManager contract.
type LockManager struct {
	client     *redis.Client
	ttl        time.Duration
	maxRetries int
	retryDelay time.Duration
}

// NewLockManager creates a lock manager with the given lock TTL.
func NewLockManager(client *redis.Client, ttl time.Duration) *LockManager {
	return &LockManager{
		client:     client,
		ttl:        ttl,
		maxRetries: 10,
		retryDelay: 100 * time.Millisecond,
	}
}

// WithLock runs fn while holding the named lock. The lock is released on
// return; a lingering lock expires after the TTL.
func (m *LockManager) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lock := NewDistributedLock(m.client, key, m.ttl)
	if err := lock.AcquireWithRetry(ctx, m.maxRetries, m.retryDelay); err != nil {
		return err
	}
	defer lock.Release(context.WithoutCancel(ctx))

	return fn(ctx)
}
