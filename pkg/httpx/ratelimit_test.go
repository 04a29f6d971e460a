package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/invitegate/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.ClientIP(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.ClientIP(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.ClientIP(req))
	})

	t.Run("raw RemoteAddr without port", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "pipe"
		require.Equal(t, "pipe", httpx.ClientIP(req))
	})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestThrottle(t *testing.T) {
	t.Run("blocks after burst", func(t *testing.T) {
		h := httpx.Throttle(httpx.ThrottleConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}, httpx.ClientIP)(okHandler())

		for i := range 3 {
			require.Equal(t, http.StatusOK, hit(h, "192.168.1.1:1").Code, "request %d", i+1)
		}

		rec := hit(h, "192.168.1.1:1")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("clients are tracked separately", func(t *testing.T) {
		h := httpx.Throttle(httpx.ThrottleConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}, httpx.ClientIP)(okHandler())

		require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
		require.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1").Code)
		require.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1").Code)
	})

	t.Run("empty key passes through", func(t *testing.T) {
		h := httpx.Throttle(httpx.ThrottleConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1},
			func(*http.Request) string { return "" })(okHandler())

		for range 3 {
			require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
		}
	})
}

func TestDefaultThrottle(t *testing.T) {
	require.Positive(t, httpx.DefaultThrottle.RequestsPerWindow)
	require.Positive(t, httpx.DefaultThrottle.Burst)
	require.Positive(t, httpx.DefaultThrottle.Window)
}
