// Package ratelimit enforces fixed-window consumption limits per identity.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Defaults applied to each identity namespace.
const (
	DefaultPoints = 5
	DefaultWindow = time.Minute
)

// Namespaces keep one identity's budgets for different operations apart.
const (
	ScopeCreateCode  = "create_code"
	ScopeReserveCode = "reserve_code"
	ScopeRegisterNFT = "register_nft"
)

// Decision is the outcome of one consumption.
type Decision struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long until the window resets. Only set when denied.
	RetryAfter time.Duration
}

// Limiter consumes one point for key. An error means the limiter could not
// decide; callers must not treat it as allowed.
type Limiter interface {
	Consume(ctx context.Context, key string) (Decision, error)
}

type Config struct {
	Prefix string
	Points int
	Window time.Duration
}

func (c Config) withDefaults() Config {
	if c.Points <= 0 {
		c.Points = DefaultPoints
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	return c
}

func (c Config) key(k string) string {
	if c.Prefix == "" {
		return k
	}
	return c.Prefix + ":" + k
}

func decide(cfg Config, count int64, ttl time.Duration) Decision {
	if count > int64(cfg.Points) {
		if ttl <= 0 {
			ttl = cfg.Window
		}
		return Decision{RetryAfter: ttl}
	}
	return Decision{Allowed: true, Remaining: cfg.Points - int(count)}
}

// consumeScript increments the counter and starts the window on the first hit.
// Returns {count, pttl}.
var consumeScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// RedisLimiter shares windows between instances.
type RedisLimiter struct {
	client redis.Scripter
	cfg    Config
}

func NewRedisLimiter(client redis.Scripter, cfg Config) *RedisLimiter {
	return &RedisLimiter{client: client, cfg: cfg.withDefaults()}
}

func (l *RedisLimiter) Consume(ctx context.Context, key string) (Decision, error) {
	res, err := consumeScript.Run(ctx, l.client, []string{"ratelimit:" + l.cfg.key(key)}, l.cfg.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: consume: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script reply %v", res)
	}
	return decide(l.cfg, res[0], time.Duration(res[1])*time.Millisecond), nil
}

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryLimiter keeps windows in process.
type MemoryLimiter struct {
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	cfg     Config
	mu      sync.Mutex
	windows *gocache.Cache
}

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	cfg = cfg.withDefaults()
	return &MemoryLimiter{
		Now:     time.Now,
		cfg:     cfg,
		windows: gocache.New(cfg.Window, 2*cfg.Window),
	}
}

func (l *MemoryLimiter) Consume(_ context.Context, key string) (Decision, error) {
	k := l.cfg.key(key)
	now := l.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows.Get(k)
	win, _ := w.(*window)
	if !ok || win == nil || !now.Before(win.resetAt) {
		win = &window{resetAt: now.Add(l.cfg.Window)}
		l.windows.Set(k, win, l.cfg.Window)
	}
	win.count++

	return decide(l.cfg, win.count, win.resetAt.Sub(now)), nil
}
