package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/cache"
	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/internal/gate/lock"
	"github.com/aussiebroadwan/invitegate/internal/gate/metrics"
	"github.com/aussiebroadwan/invitegate/internal/gate/ratelimit"
	"github.com/aussiebroadwan/invitegate/internal/gate/store"
	"github.com/aussiebroadwan/invitegate/pkg/cryptox"
	"github.com/aussiebroadwan/invitegate/pkg/idx"
	"github.com/aussiebroadwan/invitegate/pkg/slogx"
	"golang.org/x/sync/errgroup"
)

// Reservation kinds, used as metric labels.
const (
	KindCode = "code"
	KindNFT  = "nft"
)

type CodeReservation struct {
	Code          string
	Email         string
	WalletAddress string
	Signature     string
	IPAddress     string
	DeviceInfo    []byte
}

type NFTReservation struct {
	Email         string
	WalletAddress string
	TokenID       uint64
	Signature     string
}

// ReservationCoordinator turns a code use or a staking proof into a
// Registration, at most once per email and wallet and never past a code's
// MaxUses.
type ReservationCoordinator struct {
	Store       store.Store
	Cache       *cache.CacheAside
	Locker      lock.Locker
	Oracle      *EligibilityOracle
	Verifier    SignatureVerifier
	CodeLimiter ratelimit.Limiter
	NFTLimiter  ratelimit.Limiter
	Metrics     *metrics.Metrics

	// Now defaults to time.Now.
	Now func() time.Time
}

// ReserveByCode redeems one use of an invite code.
func (c *ReservationCoordinator) ReserveByCode(ctx context.Context, r CodeReservation) (idx.ID, error) {
	id, err := c.reserveByCode(ctx, r)
	c.record(KindCode, err)
	return id, err
}

func (c *ReservationCoordinator) reserveByCode(ctx context.Context, r CodeReservation) (idx.ID, error) {
	// 0. Normalise identities so case variants cannot slip past dedup.
	code, err := domain.NormalizeCode(r.Code)
	if err != nil {
		return idx.Zero, ErrInvalidCode
	}
	email, err := domain.NormalizeEmail(r.Email)
	if err != nil {
		return idx.Zero, invalid(err)
	}
	wallet, err := domain.NormalizeWallet(r.WalletAddress)
	if err != nil {
		return idx.Zero, invalid(err)
	}

	ctx = slogx.With(ctx, slog.String("kind", KindCode), slog.String("code", code))
	log := slogx.FromContext(ctx)

	// 1. Rate limit per email.
	if err := consume(ctx, c.CodeLimiter, c.Metrics, ratelimit.ScopeReserveCode, cryptox.Fingerprint(email)); err != nil {
		return idx.Zero, err
	}

	// Advisory: a cached "used" never goes stale since registrations are
	// immutable. Anything else is decided by the store below.
	if err := c.rejectCachedUse(ctx, email, wallet); err != nil {
		return idx.Zero, err
	}

	// 2. Serialise on the code and both identities.
	lease, err := c.Locker.Acquire(ctx, "code:"+code, emailLockKey(email), walletLockKey(wallet))
	if err != nil {
		log.Error("failed to acquire reservation lock", slog.Any("error", err))
		return idx.Zero, internal(err)
	}
	defer c.release(ctx, lease)

	now := c.now().UTC()
	reg := domain.Registration{
		ID:            idx.NewAt(now),
		Email:         email,
		WalletAddress: wallet,
		InviteCode:    code,
		Signature:     r.Signature,
		Type:          domain.RegistrationInviteCode,
		CreatedAt:     now,
	}

	var updated domain.InviteCode
	err = c.Store.WithTx(ctx, func(tx store.Tx) error {
		// 3. Authoritative read of the code under an exclusive lock.
		ic, err := tx.InviteCodes().LockInviteCodeByCode(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCode
		}
		if err != nil {
			return err
		}
		switch {
		case !ic.IsActive:
			return ErrCodeInactive
		case ic.Exhausted():
			return ErrCodeExhausted
		}

		// 4. Authoritative identity checks.
		if err := tx.LockKeys(ctx, emailLockKey(email), walletLockKey(wallet)); err != nil {
			return err
		}
		if err := checkIdentities(ctx, tx, email, wallet); err != nil {
			return err
		}

		// 5. Signature must bind this wallet to this code.
		if !c.Verifier.Verify(CodeMessage(code), r.Signature, wallet) {
			return ErrInvalidSignature
		}

		// 6. Registration, usage and counter commit together.
		if err := tx.Registrations().CreateRegistration(ctx, reg); err != nil {
			return err
		}
		if err := tx.CodeUsages().CreateCodeUsage(ctx, domain.CodeUsage{
			ID:           idx.NewAt(now),
			InviteCodeID: ic.ID,
			UserEmail:    email,
			IPAddress:    r.IPAddress,
			DeviceInfo:   r.DeviceInfo,
			UsedAt:       now,
		}); err != nil {
			return err
		}
		updated, err = tx.InviteCodes().IncrementInviteCodeUses(ctx, ic.ID)
		return err
	})
	if err != nil {
		return idx.Zero, c.fail(ctx, err)
	}

	// 7. Refresh the cache while still holding the identity lock.
	c.syncCaches(ctx, email, wallet, &updated)

	log.Info("registration created",
		slog.String("registration_id", reg.ID.String()),
		slog.Int("current_uses", updated.CurrentUses),
		slog.Int("max_uses", updated.MaxUses),
	)
	return reg.ID, nil
}

// ReserveByNFT registers a wallet that proves a sufficiently long stake.
func (c *ReservationCoordinator) ReserveByNFT(ctx context.Context, r NFTReservation) (idx.ID, error) {
	id, err := c.reserveByNFT(ctx, r)
	c.record(KindNFT, err)
	return id, err
}

func (c *ReservationCoordinator) reserveByNFT(ctx context.Context, r NFTReservation) (idx.ID, error) {
	if err := domain.ValidateTokenID(r.TokenID); err != nil {
		return idx.Zero, invalid(err)
	}
	email, err := domain.NormalizeEmail(r.Email)
	if err != nil {
		return idx.Zero, invalid(err)
	}
	wallet, err := domain.NormalizeWallet(r.WalletAddress)
	if err != nil {
		return idx.Zero, invalid(err)
	}

	ctx = slogx.With(ctx, slog.String("kind", KindNFT), slog.Uint64("token_id", r.TokenID))
	log := slogx.FromContext(ctx)

	// 1. Rate limit per wallet.
	if err := consume(ctx, c.NFTLimiter, c.Metrics, ratelimit.ScopeRegisterNFT, wallet); err != nil {
		return idx.Zero, err
	}

	if err := c.rejectCachedUse(ctx, email, wallet); err != nil {
		return idx.Zero, err
	}

	// 2. Serialise on wallet, email and token.
	tokenKey := "token:" + strconv.FormatUint(r.TokenID, 10)
	lease, err := c.Locker.Acquire(ctx, walletLockKey(wallet), emailLockKey(email), tokenKey)
	if err != nil {
		log.Error("failed to acquire reservation lock", slog.Any("error", err))
		return idx.Zero, internal(err)
	}
	defer c.release(ctx, lease)

	// 3. Signature must bind this wallet to this token.
	if !c.Verifier.Verify(NFTMessage(r.TokenID), r.Signature, wallet) {
		log.Warn("signature does not match wallet")
		return idx.Zero, ErrInvalidSignature
	}

	// 4. Authoritative identity checks before paying for an RPC round trip.
	if err := checkIdentities(ctx, c.Store, email, wallet); err != nil {
		return idx.Zero, c.fail(ctx, err)
	}

	// 5. Eligibility straight from the ledger, never from the cache.
	e, err := c.Oracle.Evaluate(ctx, r.TokenID, wallet)
	if err != nil {
		return idx.Zero, err
	}
	if !e.IsEligible {
		log.Warn("staking requirement not met")
		return idx.Zero, ErrEligibilityNotMet
	}

	// 6. Persist. The identity re-check inside the transaction covers other
	// processes sharing the database.
	now := c.now().UTC()
	tokenID := r.TokenID
	reg := domain.Registration{
		ID:            idx.NewAt(now),
		Email:         email,
		WalletAddress: wallet,
		Signature:     r.Signature,
		Type:          domain.RegistrationNFT,
		TokenID:       &tokenID,
		CreatedAt:     now,
	}
	err = c.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.LockKeys(ctx, emailLockKey(email), walletLockKey(wallet), tokenKey); err != nil {
			return err
		}
		if err := checkIdentities(ctx, tx, email, wallet); err != nil {
			return err
		}
		return tx.Registrations().CreateRegistration(ctx, reg)
	})
	if err != nil {
		return idx.Zero, c.fail(ctx, err)
	}

	// 7. Cache sync.
	c.syncCaches(ctx, email, wallet, nil)

	log.Info("registration created", slog.String("registration_id", reg.ID.String()))
	return reg.ID, nil
}

// checkIdentities fails if email or wallet already belongs to someone.
func checkIdentities(ctx context.Context, st store.Store, email, wallet string) error {
	used, err := emailUsed(ctx, st, email)
	if err != nil {
		return err
	}
	if used {
		return ErrEmailAlreadyUsed
	}

	used, err = st.Registrations().WalletRegistered(ctx, wallet)
	if err != nil {
		return err
	}
	if used {
		return ErrWalletAlreadyUsed
	}
	return nil
}

func (c *ReservationCoordinator) rejectCachedUse(ctx context.Context, email, wallet string) error {
	if used, ok := c.Cache.EmailUsed(ctx, email); ok && used {
		slogx.FromContext(ctx).Warn("email already registered (cached)")
		return ErrEmailAlreadyUsed
	}
	if used, ok := c.Cache.WalletUsed(ctx, wallet); ok && used {
		slogx.FromContext(ctx).Warn("wallet already registered (cached)")
		return ErrWalletAlreadyUsed
	}
	return nil
}

// fail maps store errors onto the taxonomy and logs at the right level.
func (c *ReservationCoordinator) fail(ctx context.Context, err error) error {
	log := slogx.FromContext(ctx)

	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		err = ErrEmailAlreadyUsed
	case errors.Is(err, store.ErrDuplicateWallet):
		err = ErrWalletAlreadyUsed
	case errors.Is(err, store.ErrQuotaExceeded):
		err = ErrCodeExhausted
	}

	switch {
	case errors.Is(err, ErrInvalidCode),
		errors.Is(err, ErrCodeInactive),
		errors.Is(err, ErrCodeExhausted),
		errors.Is(err, ErrEmailAlreadyUsed),
		errors.Is(err, ErrWalletAlreadyUsed),
		errors.Is(err, ErrInvalidSignature):
		log.Warn("reservation rejected", slog.String("reason", err.Error()))
		return err
	default:
		log.Error("reservation failed", slog.Any("error", err))
		return internal(err)
	}
}

// syncCaches overwrites the identity and invite entries after a commit. An
// entry that cannot be overwritten is deleted so it cannot linger stale.
func (c *ReservationCoordinator) syncCaches(ctx context.Context, email, wallet string, code *domain.InviteCode) {
	log := slogx.FromContext(ctx)

	writes := map[string]func(context.Context) error{
		cache.EmailKey(email): func(ctx context.Context) error {
			return c.Cache.StoreEmailUsed(ctx, email, true)
		},
		cache.WalletKey(wallet): func(ctx context.Context) error {
			return c.Cache.StoreWalletUsed(ctx, wallet, true)
		},
	}
	if code != nil {
		writes[cache.InviteKey(code.Code)] = func(ctx context.Context) error {
			return c.Cache.StoreInviteValidity(ctx, code.Code, cache.InviteEntryFor(code))
		}
	}

	var g errgroup.Group
	for key, write := range writes {
		g.Go(func() error {
			if err := write(ctx); err != nil {
				log.Warn("cache write failed, invalidating", slog.Any("error", err))
				if err := c.Cache.Invalidate(ctx, key); err != nil {
					log.Warn("cache invalidate failed", slog.Any("error", err))
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (c *ReservationCoordinator) release(ctx context.Context, lease lock.Lease) {
	if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
		slogx.FromContext(ctx).Warn("failed to release reservation lock", slog.Any("error", err))
	}
}

func (c *ReservationCoordinator) record(kind string, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case IsRetryable(err):
		outcome = metrics.OutcomeError
	default:
		outcome = metrics.OutcomeRejected
	}
	metrics.OrDiscard(c.Metrics).Reservations.WithLabelValues(kind, outcome).Inc()
}

func (c *ReservationCoordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func emailLockKey(email string) string   { return "email:" + cryptox.Fingerprint(email) }
func walletLockKey(wallet string) string { return "wallet:" + wallet }
