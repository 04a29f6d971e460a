package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/cache"
	"github.com/aussiebroadwan/invitegate/internal/gate/chain"
	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/internal/gate/metrics"
	"github.com/aussiebroadwan/invitegate/pkg/slogx"
)

// DefaultOracleTimeout bounds a single staking ledger query.
const DefaultOracleTimeout = 5 * time.Second

// EligibilityOracle answers whether a token has been staked long enough.
type EligibilityOracle struct {
	Ledger  chain.StakingLedger
	Cache   *cache.CacheAside
	Metrics *metrics.Metrics

	// Timeout bounds each ledger call. Zero means DefaultOracleTimeout.
	Timeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// CheckEligibility is the read-only query. Results, eligible or not, are
// cached for five minutes.
func (o *EligibilityOracle) CheckEligibility(ctx context.Context, tokenID uint64, wallet string) (domain.Eligibility, error) {
	if err := domain.ValidateTokenID(tokenID); err != nil {
		return domain.Eligibility{}, invalid(err)
	}
	wallet, err := domain.NormalizeWallet(wallet)
	if err != nil {
		return domain.Eligibility{}, invalid(err)
	}

	if e, ok := o.Cache.Eligibility(ctx, tokenID, wallet); ok {
		return e, nil
	}

	e, err := o.evaluate(ctx, tokenID)
	if err != nil {
		return domain.Eligibility{}, err
	}
	o.store(ctx, tokenID, wallet, e)
	return e, nil
}

// Evaluate always asks the ledger. When the stake looks old enough the
// contract's own meetsStakingRequirement has the final say.
func (o *EligibilityOracle) Evaluate(ctx context.Context, tokenID uint64, wallet string) (domain.Eligibility, error) {
	log := slogx.FromContext(ctx)

	e, err := o.evaluate(ctx, tokenID)
	if err != nil {
		return domain.Eligibility{}, err
	}

	if e.IsEligible {
		var ok bool
		err := o.observe(ctx, func(ctx context.Context) (err error) {
			ok, err = o.Ledger.MeetsStakingRequirement(ctx, tokenID)
			return err
		})
		if err != nil {
			log.Error("staking requirement check failed",
				slog.Uint64("token_id", tokenID),
				slog.Any("error", err),
			)
			return domain.Eligibility{}, ErrEligibilityCheckFailed
		}
		if !ok {
			log.Warn("contract rejected staking requirement",
				slog.Uint64("token_id", tokenID),
			)
			e.IsEligible = false
		}
	}

	o.store(ctx, tokenID, wallet, e)
	return e, nil
}

func (o *EligibilityOracle) evaluate(ctx context.Context, tokenID uint64) (domain.Eligibility, error) {
	var stake domain.Stake
	err := o.observe(ctx, func(ctx context.Context) (err error) {
		stake, err = o.Ledger.Stakes(ctx, tokenID)
		return err
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to read stake",
			slog.Uint64("token_id", tokenID),
			slog.Any("error", err),
		)
		return domain.Eligibility{}, ErrEligibilityCheckFailed
	}

	return domain.EvaluateStake(stake, o.now()), nil
}

// observe runs one bounded ledger call and records it.
func (o *EligibilityOracle) observe(ctx context.Context, fn func(context.Context) error) error {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	m := metrics.OrDiscard(o.Metrics)
	m.OracleLatency.Observe(time.Since(start).Seconds())

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	m.OracleRequests.WithLabelValues(outcome).Inc()
	return err
}

func (o *EligibilityOracle) store(ctx context.Context, tokenID uint64, wallet string, e domain.Eligibility) {
	if err := o.Cache.StoreEligibility(ctx, tokenID, wallet, e); err != nil {
		slogx.FromContext(ctx).Warn("failed to cache eligibility",
			slog.Uint64("token_id", tokenID),
			slog.Any("error", err),
		)
	}
}

func (o *EligibilityOracle) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
