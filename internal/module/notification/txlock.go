package notification

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker serializes calls carrying the same provider transaction id so
// the idempotence invariant holds under concurrent delivery.
type Locker interface {
	// Acquire blocks until the lease for key is held or ctx is done.
	// The returned release function must be called exactly once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

const (
	txLockPrefix   = "notification:lock:"
	txLockTTL      = 30 * time.Second
	txLockPollStep = 25 * time.Millisecond
)

// RedisLocker is a Locker backed by a Redis SetNX lease with a TTL, so a
// crashed holder cannot wedge a transaction id forever.
type RedisLocker struct {
	client redis.UniversalClient
}

// NewRedisLocker creates a Redis-backed locker.
func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: client}
}

// Acquire polls SetNX until the lease is obtained or the context ends.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := txLockPrefix + key

	for {
		ok, err := l.client.SetNX(ctx, lockKey, "1", txLockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// Release on a fresh context: the call's context may
				// already be canceled when the deferred release runs.
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				l.client.Del(releaseCtx, lockKey)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(txLockPollStep):
		}
	}
}

// MemoryLocker is an in-process Locker used when Redis is not
// configured, and in tests. It serializes within a single process only.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMemoryLocker creates an in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*sync.Mutex)}
}

// Acquire takes the per-key mutex.
func (l *MemoryLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
