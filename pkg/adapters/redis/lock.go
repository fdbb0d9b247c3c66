package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/KIIGIN/bot-constructor/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
)

// unlockScript deletes the lock only if it still holds our token.
var unlockScript = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// renewScript extends the lease only while it still holds our token.
var renewScript = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// Locker implements ports.DistributedLocker using Redis. A held lock is
// renewed every third of its TTL until released, so a run outliving the TTL
// keeps it; the TTL only bounds how long a crashed holder blocks others.
type Locker struct {
	client *backend.Client
	prefix string
	retry  time.Duration
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		retry:  100 * time.Millisecond,
	}
}

// Lock acquires a distributed lock for the given key using Redis SET NX PX.
// It polls until the lock is free or the context is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.try(ctx, lockKey, token, ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		ticker := time.NewTicker(l.retry)
		defer ticker.Stop()

	wait:
		for {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrLockAcquire, ctx.Err())
			case <-ticker.C:
				ok, err = l.try(ctx, lockKey, token, ttl)
				if err != nil {
					return nil, err
				}
				if ok {
					break wait
				}
			}
		}
	}

	stop := l.renew(lockKey, token, ttl)
	return func(ctx context.Context) error {
		stop()
		return unlockScript.Run(ctx, l.client, []string{lockKey}, token).Err()
	}, nil
}

// renew keeps extending the lease in the background. The returned func stops
// renewal and waits for it to finish; it is safe to call more than once.
func (l *Locker) renew(lockKey, token string, ttl time.Duration) func() {
	interval := ttl / 3
	if interval <= 0 {
		return func() {}
	}
	ms := strconv.FormatInt(ttl.Milliseconds(), 10)
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				held, err := renewScript.Run(ctx, l.client, []string{lockKey}, token, ms).Int()
				cancel()
				if err == nil && held == 0 {
					// Lease lost to expiry; someone else may own the key now.
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(quit) })
		<-done
	}
}

func (l *Locker) try(ctx context.Context, lockKey, token string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis error acquiring lock: %w", err)
	}
	return ok, nil
}
