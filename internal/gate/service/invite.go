package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/cache"
	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/internal/gate/metrics"
	"github.com/aussiebroadwan/invitegate/internal/gate/ratelimit"
	"github.com/aussiebroadwan/invitegate/internal/gate/store"
	"github.com/aussiebroadwan/invitegate/pkg/cryptox"
	"github.com/aussiebroadwan/invitegate/pkg/idx"
	"github.com/aussiebroadwan/invitegate/pkg/slogx"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// CodeAlphabet leaves out characters that are easy to misread (0/O, 1/I/L).
const CodeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const maxCodeAttempts = 5

type InviteService struct {
	Store   store.Store
	Cache   *cache.CacheAside
	Limiter ratelimit.Limiter
	Metrics *metrics.Metrics

	// Now defaults to time.Now.
	Now func() time.Time
}

// CreateInviteCode mints a new code owned by creatorEmail.
func (s *InviteService) CreateInviteCode(ctx context.Context, creatorEmail string, maxUses int) (domain.InviteCode, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	creatorEmail, err := domain.NormalizeEmail(creatorEmail)
	if err != nil {
		return domain.InviteCode{}, invalid(err)
	}
	if maxUses < domain.MinMaxUses || maxUses > domain.MaxMaxUses {
		log.Warn("invite code requested with out of range max uses", slog.Int("max_uses", maxUses))
		return domain.InviteCode{}, ErrInvalidRequest
	}

	// 2. Rate limit per creator.
	if err := consume(ctx, s.Limiter, s.Metrics, ratelimit.ScopeCreateCode, cryptox.Fingerprint(creatorEmail)); err != nil {
		return domain.InviteCode{}, err
	}

	// 3. Generate and insert, retrying on the rare collision.
	now := s.now().UTC()
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := gonanoid.Generate(CodeAlphabet, domain.InviteCodeLength)
		if err != nil {
			log.Error("failed to generate invite code", slog.Any("error", err))
			return domain.InviteCode{}, internal(err)
		}

		c := domain.InviteCode{
			ID:           idx.NewAt(now),
			Code:         code,
			CreatorEmail: creatorEmail,
			MaxUses:      maxUses,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		err = s.Store.InviteCodes().CreateInviteCode(ctx, c)
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Debug("invite code collision, retrying", slog.Int("attempt", attempt))
			continue
		}
		if err != nil {
			log.Error("failed to create invite code", slog.Any("error", err))
			return domain.InviteCode{}, internal(err)
		}

		// 4. Drop any stale "unknown code" entry.
		if err := s.Cache.Invalidate(ctx, cache.InviteKey(code)); err != nil {
			log.Warn("failed to invalidate invite cache", slog.String("code", code), slog.Any("error", err))
		}

		log.Info("invite code created",
			slog.String("invite_code_id", c.ID.String()),
			slog.Int("max_uses", maxUses),
		)
		return c, nil
	}

	log.Error("exhausted invite code generation attempts")
	return domain.InviteCode{}, internal(store.ErrAlreadyExists)
}

// VerifyInviteCode reports whether code can currently be redeemed. The
// answer may come from the cache and is only advisory.
func (s *InviteService) VerifyInviteCode(ctx context.Context, code string) (bool, error) {
	code, err := domain.NormalizeCode(code)
	if err != nil {
		return false, nil
	}

	if e, ok := s.Cache.InviteValidity(ctx, code); ok {
		return e.IsValid, nil
	}

	var entry cache.InviteEntry
	c, err := s.Store.InviteCodes().GetInviteCodeByCode(ctx, code)
	switch {
	case errors.Is(err, store.ErrNotFound):
		entry = cache.InviteEntryFor(nil)
	case err != nil:
		slogx.FromContext(ctx).Error("failed to read invite code", slog.Any("error", err))
		return false, internal(err)
	default:
		entry = cache.InviteEntryFor(&c)
	}

	if err := s.Cache.StoreInviteValidity(ctx, code, entry); err != nil {
		slogx.FromContext(ctx).Warn("failed to cache invite validity", slog.Any("error", err))
	}
	return entry.IsValid, nil
}

// IsEmailUsed reports whether email has registered or redeemed a code.
func (s *InviteService) IsEmailUsed(ctx context.Context, email string) (bool, error) {
	email, err := domain.NormalizeEmail(email)
	if err != nil {
		return false, invalid(err)
	}

	if used, ok := s.Cache.EmailUsed(ctx, email); ok {
		return used, nil
	}

	used, err := emailUsed(ctx, s.Store, email)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to check email", slog.Any("error", err))
		return false, internal(err)
	}

	if err := s.Cache.StoreEmailUsed(ctx, email, used); err != nil {
		slogx.FromContext(ctx).Warn("failed to cache email state", slog.Any("error", err))
	}
	return used, nil
}

// IsWalletUsed reports whether wallet has registered.
func (s *InviteService) IsWalletUsed(ctx context.Context, wallet string) (bool, error) {
	wallet, err := domain.NormalizeWallet(wallet)
	if err != nil {
		return false, invalid(err)
	}

	if used, ok := s.Cache.WalletUsed(ctx, wallet); ok {
		return used, nil
	}

	used, err := s.Store.Registrations().WalletRegistered(ctx, wallet)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to check wallet", slog.Any("error", err))
		return false, internal(err)
	}

	if err := s.Cache.StoreWalletUsed(ctx, wallet, used); err != nil {
		slogx.FromContext(ctx).Warn("failed to cache wallet state", slog.Any("error", err))
	}
	return used, nil
}

// GetInviteCodeStats always reads the store.
func (s *InviteService) GetInviteCodeStats(ctx context.Context, code string) (domain.InviteCodeStats, error) {
	code, err := domain.NormalizeCode(code)
	if err != nil {
		return domain.InviteCodeStats{}, ErrNotFound
	}

	c, err := s.Store.InviteCodes().GetInviteCodeByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return domain.InviteCodeStats{}, ErrNotFound
	}
	if err != nil {
		slogx.FromContext(ctx).Error("failed to read invite code", slog.Any("error", err))
		return domain.InviteCodeStats{}, internal(err)
	}

	usages, err := s.Store.CodeUsages().ListCodeUsagesByInviteCode(ctx, c.ID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list code usages", slog.Any("error", err))
		return domain.InviteCodeStats{}, internal(err)
	}

	return domain.InviteCodeStats{
		Code:          c.Code,
		UsageCount:    len(usages),
		RemainingUses: c.RemainingUses(),
		Usages:        usages,
	}, nil
}

func (s *InviteService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// emailUsed checks both tables an email can appear in.
func emailUsed(ctx context.Context, st store.Store, email string) (bool, error) {
	used, err := st.Registrations().EmailRegistered(ctx, email)
	if err != nil || used {
		return used, err
	}
	return st.CodeUsages().EmailRedeemed(ctx, email)
}
