// Package redis provides the Redis-backed start lock used by the server supervisor.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/radiolab/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// ErrLockAcquire is returned when Redis fails while acquiring the lock.
var ErrLockAcquire = errors.New("failed to acquire distributed lock")

// DefaultPrefix namespaces radiolab keys.
const DefaultPrefix = "radiolab:"

const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Locker implements ports.DistributedLocker using Redis.
type Locker struct {
	client       *backend.Client
	prefix       string
	pollInterval time.Duration
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithPollInterval sets how often a contended lock is retried.
func WithPollInterval(d time.Duration) LockerOption {
	return func(l *Locker) {
		l.pollInterval = d
	}
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string, opts ...LockerOption) *Locker {
	l := &Locker{
		client:       client,
		prefix:       prefix,
		pollInterval: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dial connects to addr and checks the connection with PING.
func Dial(ctx context.Context, addr string) (*backend.Client, error) {
	client := backend.NewClient(&backend.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return client, nil
}

// Key returns the Redis key guarding name.
func (l *Locker) Key(name string) string {
	return l.prefix + "lock:" + name
}

// Lock acquires a distributed lock for the given key using Redis SET NX PX.
// The lock holds a random token so the UnlockFunc only releases its own lock.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.Key(key)
	token := uuid.NewString()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %w", ErrLockAcquire, err)
		}
		if ok {
			return func(ctx context.Context) error {
				return l.client.Eval(ctx, unlockScript, []string{lockKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
