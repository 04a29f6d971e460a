package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/invitegate/internal/gate/metrics"
	"github.com/aussiebroadwan/invitegate/internal/gate/ratelimit"
	"github.com/aussiebroadwan/invitegate/pkg/slogx"
)

// consume spends one point of key's budget. A limiter that cannot answer
// fails the request rather than letting it through.
func consume(ctx context.Context, l ratelimit.Limiter, m *metrics.Metrics, scope, key string) error {
	d, err := l.Consume(ctx, key)
	if err != nil {
		slogx.FromContext(ctx).Error("rate limiter unavailable",
			slog.String("scope", scope),
			slog.Any("error", err),
		)
		return internal(err)
	}
	if !d.Allowed {
		metrics.OrDiscard(m).RateLimited.WithLabelValues(scope).Inc()
		slogx.FromContext(ctx).Warn("rate limit exceeded",
			slog.String("scope", scope),
			slog.Duration("retry_after", d.RetryAfter),
		)
		return &RateLimitedError{RetryAfter: d.RetryAfter}
	}
	return nil
}
