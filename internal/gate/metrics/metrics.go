// Package metrics holds the prometheus collectors for the gate.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "invitegate"

// Outcome labels shared by counters.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type Metrics struct {
	// Reservations counts reservation attempts by kind (code, nft) and outcome.
	Reservations *prometheus.CounterVec

	// RateLimited counts denied consumptions by limiter scope.
	RateLimited *prometheus.CounterVec

	OracleRequests *prometheus.CounterVec
	OracleLatency  prometheus.Histogram

	// CacheLookups counts lookups by entry kind and result (hit, miss, error).
	CacheLookups *prometheus.CounterVec

	ActiveInviteCodes prometheus.Gauge
	Registrations     *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which suits tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Reservations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_total",
			Help:      "Reservation attempts by kind and outcome.",
		}, []string{"kind", "outcome"}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_denied_total",
			Help:      "Requests denied by the per-identity rate limiter.",
		}, []string{"scope"}),
		OracleRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Staking ledger queries by outcome.",
		}, []string{"outcome"}),
		OracleLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_request_duration_seconds",
			Help:      "Latency of staking ledger queries.",
			Buckets:   prometheus.DefBuckets,
		}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by entry kind and result.",
		}, []string{"kind", "result"}),
		ActiveInviteCodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_invite_codes",
			Help:      "Active invite codes with uses remaining.",
		}),
		Registrations: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registrations",
			Help:      "Registrations by type.",
		}, []string{"type"}),
	}
}

var discard = sync.OnceValue(func() *Metrics { return New(nil) })

// OrDiscard returns m, or a shared unregistered set when m is nil so callers
// built without metrics still work.
func OrDiscard(m *Metrics) *Metrics {
	if m != nil {
		return m
	}
	return discard()
}
