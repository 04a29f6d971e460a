package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/internal/gate/metrics"
	"github.com/aussiebroadwan/invitegate/pkg/cryptox"
	"github.com/aussiebroadwan/invitegate/pkg/slogx"
)

const (
	InviteTTL      = time.Hour
	IdentityTTL    = time.Hour
	EligibilityTTL = 5 * time.Minute
)

// Entry kinds, used as metric labels.
const (
	kindInvite      = "invite"
	kindEmail       = "email"
	kindWallet      = "wallet"
	kindEligibility = "eligibility"
)

func InviteKey(code string) string { return "invite:" + code }

// EmailKey hashes the address so raw emails never land in a shared cache.
func EmailKey(email string) string { return "email:" + cryptox.Fingerprint(email) }

func WalletKey(wallet string) string { return "wallet:" + wallet }

func EligibilityKey(tokenID uint64, wallet string) string {
	return "token:" + strconv.FormatUint(tokenID, 10) + ":" + wallet
}

// InviteEntry is the cached view of an invite code.
type InviteEntry struct {
	IsValid     bool `json:"isValid"`
	IsActive    bool `json:"isActive"`
	CurrentUses int  `json:"currentUses"`
	MaxUses     int  `json:"maxUses"`
}

// InviteEntryFor derives the entry for c. A nil c is an unknown code.
func InviteEntryFor(c *domain.InviteCode) InviteEntry {
	if c == nil {
		return InviteEntry{}
	}
	return InviteEntry{
		IsValid:     c.Redeemable(),
		IsActive:    c.IsActive,
		CurrentUses: c.CurrentUses,
		MaxUses:     c.MaxUses,
	}
}

type eligibilityEntry struct {
	IsEligible    bool   `json:"isEligible"`
	RemainingTime *int64 `json:"remainingTime,omitempty"`
}

// CacheAside wraps a Backend with typed lookups. A lookup that fails for any
// reason other than a miss is logged and reported as a miss, so callers fall
// back to the store.
type CacheAside struct {
	backend Backend
	metrics *metrics.Metrics
}

func New(backend Backend, m *metrics.Metrics) *CacheAside {
	return &CacheAside{backend: backend, metrics: metrics.OrDiscard(m)}
}

func (c *CacheAside) InviteValidity(ctx context.Context, code string) (InviteEntry, bool) {
	var e InviteEntry
	ok := c.lookupJSON(ctx, kindInvite, InviteKey(code), &e)
	return e, ok
}

func (c *CacheAside) StoreInviteValidity(ctx context.Context, code string, e InviteEntry) error {
	return c.storeJSON(ctx, InviteKey(code), e, InviteTTL)
}

// EmailUsed returns (used, found).
func (c *CacheAside) EmailUsed(ctx context.Context, email string) (bool, bool) {
	return c.lookupFlag(ctx, kindEmail, EmailKey(email))
}

func (c *CacheAside) StoreEmailUsed(ctx context.Context, email string, used bool) error {
	return c.backend.Set(ctx, EmailKey(email), []byte(strconv.FormatBool(used)), IdentityTTL)
}

// WalletUsed returns (used, found).
func (c *CacheAside) WalletUsed(ctx context.Context, wallet string) (bool, bool) {
	return c.lookupFlag(ctx, kindWallet, WalletKey(wallet))
}

func (c *CacheAside) StoreWalletUsed(ctx context.Context, wallet string, used bool) error {
	return c.backend.Set(ctx, WalletKey(wallet), []byte(strconv.FormatBool(used)), IdentityTTL)
}

func (c *CacheAside) Eligibility(ctx context.Context, tokenID uint64, wallet string) (domain.Eligibility, bool) {
	var e eligibilityEntry
	if !c.lookupJSON(ctx, kindEligibility, EligibilityKey(tokenID, wallet), &e) {
		return domain.Eligibility{}, false
	}

	out := domain.Eligibility{IsEligible: e.IsEligible}
	if e.RemainingTime != nil {
		d := time.Duration(*e.RemainingTime) * time.Second
		out.RemainingTime = &d
	}
	return out, true
}

func (c *CacheAside) StoreEligibility(ctx context.Context, tokenID uint64, wallet string, e domain.Eligibility) error {
	return c.storeJSON(ctx, EligibilityKey(tokenID, wallet), eligibilityEntry{
		IsEligible:    e.IsEligible,
		RemainingTime: e.RemainingSeconds(),
	}, EligibilityTTL)
}

// Invalidate drops keys built with the *Key helpers.
func (c *CacheAside) Invalidate(ctx context.Context, keys ...string) error {
	return c.backend.Delete(ctx, keys...)
}

func (c *CacheAside) Ping(ctx context.Context) error {
	return c.backend.Ping(ctx)
}

func (c *CacheAside) lookup(ctx context.Context, kind, key string) ([]byte, bool) {
	val, err := c.backend.Get(ctx, key)
	switch {
	case err == nil:
		c.metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
		return val, true
	case errors.Is(err, ErrMiss):
		c.metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
	default:
		c.metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		slogx.FromContext(ctx).Warn("cache lookup failed, falling back to store", "key_kind", kind, "err", err)
	}
	return nil, false
}

func (c *CacheAside) lookupJSON(ctx context.Context, kind, key string, v any) bool {
	raw, ok := c.lookup(ctx, kind, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		slogx.FromContext(ctx).Warn("cache entry unreadable, ignoring", "key_kind", kind, "err", err)
		return false
	}
	return true
}

func (c *CacheAside) lookupFlag(ctx context.Context, kind, key string) (bool, bool) {
	raw, ok := c.lookup(ctx, kind, key)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(string(raw))
	if err != nil {
		slogx.FromContext(ctx).Warn("cache entry unreadable, ignoring", "key_kind", kind, "err", err)
		return false, false
	}
	return v, true
}

func (c *CacheAside) storeJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.backend.Set(ctx, key, raw, ttl)
}
