package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/invitegate/pkg/slogx"
	"golang.org/x/time/rate"
)

// ThrottleConfig shapes a per-client token bucket. It sits in front of the
// whole API and only guards against floods; business rate limits live in
// the service layer.
type ThrottleConfig struct {
	// RequestsPerWindow is the sustained number of requests per Window.
	RequestsPerWindow int
	Window            time.Duration
	// Burst is how many requests may arrive back to back.
	Burst int
}

// DefaultThrottle allows 120 requests a minute per client with bursts of 30.
var DefaultThrottle = ThrottleConfig{
	RequestsPerWindow: 120,
	Window:            time.Minute,
	Burst:             30,
}

// KeyFunc picks the bucket a request is charged against.
type KeyFunc func(*http.Request) string

// ClientIP returns the caller's address, preferring the first hop in
// X-Forwarded-For, then X-Real-IP, then RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

type bucketSet struct {
	buckets sync.Map // map[string]*rate.Limiter
	limit   rate.Limit
	burst   int

	mu        sync.Mutex
	lastSweep time.Time
}

func (b *bucketSet) get(key string) *rate.Limiter {
	if l, ok := b.buckets.Load(key); ok {
		return l.(*rate.Limiter)
	}

	l, _ := b.buckets.LoadOrStore(key, rate.NewLimiter(b.limit, b.burst))
	b.sweep()
	return l.(*rate.Limiter)
}

// sweep drops idle buckets (full token count) at most every five minutes.
func (b *bucketSet) sweep() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if time.Since(b.lastSweep) < 5*time.Minute {
		return
	}
	b.lastSweep = time.Now()

	b.buckets.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(b.burst) {
			b.buckets.Delete(key)
		}
		return true
	})
}

// Throttle rejects requests with 429 once a client's bucket runs dry.
// Requests whose key is empty pass through untouched.
func Throttle(cfg ThrottleConfig, key KeyFunc) Middleware {
	set := &bucketSet{
		limit:     rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:     cfg.Burst,
		lastSweep: time.Now(),
	}
	limitHeader := strconv.Itoa(cfg.RequestsPerWindow)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				slogx.FromContext(r.Context()).Warn("throttle: no client key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			l := set.get(k)
			if l.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			// Peek at the wait without consuming a token.
			res := l.Reserve()
			delay := res.Delay()
			res.Cancel()

			SetRetryAfter(w, delay)
			w.Header().Set("X-RateLimit-Limit", limitHeader)
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("throttled",
				"client", k,
				"path", r.URL.Path,
				"retry_after", delay.String(),
			)

			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests. Please try again later.",
			})
		})
	}
}
