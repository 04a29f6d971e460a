package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/metrics"
	"github.com/aussiebroadwan/invitegate/internal/gate/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCheckEligibility(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	w := newWallet(t)

	e.Ledger.stake(1, testNow.Add(-8*24*time.Hour), true)
	e.Ledger.stake(2, testNow.Add(-2*24*time.Hour), true)

	t.Run("staked for eight days", func(t *testing.T) {
		got, err := e.Oracle.CheckEligibility(ctx, 1, w.Address)
		require.NoError(t, err)
		require.True(t, got.IsEligible)
		require.NotNil(t, got.RemainingTime)
		require.Zero(t, *got.RemainingTime)
	})

	t.Run("staked for two days", func(t *testing.T) {
		got, err := e.Oracle.CheckEligibility(ctx, 2, w.Address)
		require.NoError(t, err)
		require.False(t, got.IsEligible)
		require.NotNil(t, got.RemainingTime)
		require.InDelta(t, float64(5*86400), got.RemainingTime.Seconds(), 1)
	})

	t.Run("not staked", func(t *testing.T) {
		got, err := e.Oracle.CheckEligibility(ctx, 3, w.Address)
		require.NoError(t, err)
		require.False(t, got.IsEligible)
		require.Nil(t, got.RemainingTime)
	})

	t.Run("invalid wallet", func(t *testing.T) {
		_, err := e.Oracle.CheckEligibility(ctx, 1, "0x1234")
		require.ErrorIs(t, err, service.ErrInvalidRequest)
	})
}

func TestCheckEligibilityIsCached(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	w := newWallet(t)
	e.Ledger.stake(1, testNow.Add(-2*24*time.Hour), true)

	first, err := e.Oracle.CheckEligibility(ctx, 1, w.Address)
	require.NoError(t, err)
	require.EqualValues(t, 1, e.Ledger.calls.Load())

	// The ledger changes but the cached answer stands for five minutes.
	e.Ledger.stake(1, testNow.Add(-30*24*time.Hour), true)
	second, err := e.Oracle.CheckEligibility(ctx, 1, w.Address)
	require.NoError(t, err)
	require.Equal(t, first.IsEligible, second.IsEligible)
	require.EqualValues(t, 1, e.Ledger.calls.Load())

	// Evaluate bypasses the cache and refreshes it.
	fresh, err := e.Oracle.Evaluate(ctx, 1, w.Address)
	require.NoError(t, err)
	require.True(t, fresh.IsEligible)

	third, err := e.Oracle.CheckEligibility(ctx, 1, w.Address)
	require.NoError(t, err)
	require.True(t, third.IsEligible)
}

func TestCheckEligibilityProviderFailure(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.Ledger.err = errors.New("connection refused")
	w := newWallet(t)

	_, err := e.Oracle.CheckEligibility(ctx, 1, w.Address)
	require.ErrorIs(t, err, service.ErrEligibilityCheckFailed)
	require.Equal(t, 1.0, testutil.ToFloat64(e.Metrics.OracleRequests.WithLabelValues(metrics.OutcomeError)))

	// Failures are not cached.
	e.Ledger.err = nil
	got, err := e.Oracle.CheckEligibility(ctx, 1, w.Address)
	require.NoError(t, err)
	require.False(t, got.IsEligible)
}
