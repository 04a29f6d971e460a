package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/internal/gate/metrics"
	"github.com/aussiebroadwan/invitegate/internal/gate/store"
)

// StatsService periodically refreshes the store-derived gauges.
type StatsService struct {
	Store    store.Store
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewStatsService defaults interval to one minute.
func NewStatsService(st store.Store, m *metrics.Metrics, logger *slog.Logger, interval time.Duration) *StatsService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &StatsService{
		Store:    st,
		Metrics:  m,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start is non-blocking. Call Stop to shut the worker down.
func (s *StatsService) Start() {
	go s.run()
	s.Logger.Info("stats service started", "interval", s.Interval)
}

// Stop blocks until an in-progress refresh has finished.
func (s *StatsService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("stats service stopped")
}

func (s *StatsService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Refresh(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Refresh(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Refresh updates every gauge. A failing query leaves its gauge untouched.
func (s *StatsService) Refresh(ctx context.Context) {
	m := metrics.OrDiscard(s.Metrics)
	if n, err := s.Store.InviteCodes().CountActiveInviteCodes(ctx); err != nil {
		s.Logger.Error("failed to count active invite codes", "error", err)
	} else {
		m.ActiveInviteCodes.Set(float64(n))
	}

	counts, err := s.Store.Registrations().CountRegistrationsByType(ctx)
	if err != nil {
		s.Logger.Error("failed to count registrations", "error", err)
		return
	}
	for _, t := range []domain.RegistrationType{domain.RegistrationNFT, domain.RegistrationInviteCode} {
		m.Registrations.WithLabelValues(string(t)).Set(float64(counts[t]))
	}
	s.Logger.Debug("stats refreshed", "registrations", counts)
}
