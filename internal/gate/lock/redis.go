package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/invitegate/pkg/cryptox"
	"github.com/aussiebroadwan/invitegate/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultLeaseTTL      = 30 * time.Second
	DefaultRetryInterval = 25 * time.Millisecond
)

// releaseScript deletes the key only if this lease still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SET NX PX lock. Each key expires after LeaseTTL so a
// crashed holder cannot wedge an identity forever.
type RedisLocker struct {
	Client        redis.UniversalClient
	LeaseTTL      time.Duration
	RetryInterval time.Duration
	Timeout       time.Duration
}

func NewRedisLocker(client redis.UniversalClient, timeout time.Duration) *RedisLocker {
	return &RedisLocker{
		Client:        client,
		LeaseTTL:      DefaultLeaseTTL,
		RetryInterval: DefaultRetryInterval,
		Timeout:       timeout,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (Lease, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, err
	}

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	lease := &redisLease{client: l.Client, token: token}
	for _, k := range normalize(keys) {
		key := "lock:" + k
		if err := l.acquireOne(ctx, key, token); err != nil {
			// Release with a fresh context, ctx may already be done.
			_ = lease.Release(context.WithoutCancel(ctx))
			return nil, err
		}
		lease.keys = append(lease.keys, key)
	}
	return lease, nil
}

func (l *RedisLocker) acquireOne(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(l.RetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.LeaseTTL).Result()
		switch {
		case ok:
			return nil
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return ErrLockTimeout
		case err != nil:
			return fmt.Errorf("lock: acquire %s: %w", key, err)
		}

		select {
		case <-ctx.Done():
			return ErrLockTimeout
		case <-ticker.C:
		}
	}
}

type redisLease struct {
	client redis.UniversalClient
	token  string
	keys   []string
}

func (le *redisLease) Release(ctx context.Context) error {
	var errs []error
	for i := len(le.keys) - 1; i >= 0; i-- {
		if err := releaseScript.Run(ctx, le.client, []string{le.keys[i]}, le.token).Err(); err != nil {
			errs = append(errs, err)
		}
	}
	le.keys = nil

	if err := errors.Join(errs...); err != nil {
		slogx.FromContext(ctx).Warn("lock release failed, keys will expire", "err", err)
		return err
	}
	return nil
}
