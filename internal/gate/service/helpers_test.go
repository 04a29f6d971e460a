package service_test

import (
	"context"
	"crypto/ecdsa"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/cache"
	"github.com/aussiebroadwan/invitegate/internal/gate/chain"
	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/internal/gate/lock"
	"github.com/aussiebroadwan/invitegate/internal/gate/metrics"
	"github.com/aussiebroadwan/invitegate/internal/gate/ratelimit"
	"github.com/aussiebroadwan/invitegate/internal/gate/service"
	"github.com/aussiebroadwan/invitegate/internal/gate/store"
	"github.com/aussiebroadwan/invitegate/internal/gate/store/drivers/sqlite"
	"github.com/aussiebroadwan/invitegate/pkg/cryptox"
	"github.com/aussiebroadwan/invitegate/pkg/idx"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeLedger is an in-memory staking contract.
type fakeLedger struct {
	mu     sync.Mutex
	stakes map[uint64]domain.Stake
	meets  map[uint64]bool
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{stakes: map[uint64]domain.Stake{}, meets: map[uint64]bool{}}
}

func (l *fakeLedger) stake(id uint64, since time.Time, meets bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stakes[id] = domain.Stake{IsStaked: true, Since: since}
	l.meets[id] = meets
}

func (l *fakeLedger) wait(ctx context.Context) error {
	l.calls.Add(1)
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *fakeLedger) Stakes(ctx context.Context, id uint64) (domain.Stake, error) {
	if err := l.wait(ctx); err != nil {
		return domain.Stake{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stakes[id], nil
}

func (l *fakeLedger) MeetsStakingRequirement(ctx context.Context, id uint64) (bool, error) {
	if err := l.wait(ctx); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.meets[id], nil
}

var _ chain.StakingLedger = (*fakeLedger)(nil)

type env struct {
	Store       *sqlite.Store
	Cache       *cache.CacheAside
	Metrics     *metrics.Metrics
	Ledger      *fakeLedger
	Oracle      *service.EligibilityOracle
	Invites     *service.InviteService
	Coordinator *service.ReservationCoordinator
}

type envOption func(*envConfig)

type envConfig struct {
	points int
	locker lock.Locker
}

func withPoints(n int) envOption {
	return func(c *envConfig) { c.points = n }
}

// withLocker replaces the in-process locker.
func withLocker(l lock.Locker) envOption {
	return func(c *envConfig) { c.locker = l }
}

// passthroughLocker grants every key immediately, leaving serialisation to
// the store.
type passthroughLocker struct{}

type passthroughLease struct{}

func (passthroughLocker) Acquire(context.Context, ...string) (lock.Lease, error) {
	return passthroughLease{}, nil
}

func (passthroughLease) Release(context.Context) error { return nil }

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()

	cfg := envConfig{points: 1000, locker: lock.NewMemoryLocker(10 * time.Second)}
	for _, o := range opts {
		o(&cfg)
	}

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "gate.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	m := metrics.New(nil)
	c := cache.New(cache.NewMemoryBackend(time.Minute), m)
	ledger := newFakeLedger()
	now := func() time.Time { return testNow }

	oracle := &service.EligibilityOracle{
		Ledger:  ledger,
		Cache:   c,
		Metrics: m,
		Timeout: time.Second,
		Now:     now,
	}

	limiter := func(scope string) ratelimit.Limiter {
		return ratelimit.NewMemoryLimiter(ratelimit.Config{Prefix: scope, Points: cfg.points})
	}

	return &env{
		Store:   st,
		Cache:   c,
		Metrics: m,
		Ledger:  ledger,
		Oracle:  oracle,
		Invites: &service.InviteService{
			Store:   st,
			Cache:   c,
			Limiter: limiter(ratelimit.ScopeCreateCode),
			Metrics: m,
			Now:     now,
		},
		Coordinator: &service.ReservationCoordinator{
			Store:       st,
			Cache:       c,
			Locker:      cfg.locker,
			Oracle:      oracle,
			CodeLimiter: limiter(ratelimit.ScopeReserveCode),
			NFTLimiter:  limiter(ratelimit.ScopeRegisterNFT),
			Metrics:     m,
			Now:         now,
		},
	}
}

func (e *env) seedCode(t *testing.T, code string, maxUses int) domain.InviteCode {
	t.Helper()

	c := domain.InviteCode{
		ID:           idx.New(),
		Code:         code,
		CreatorEmail: "creator@example.com",
		MaxUses:      maxUses,
		IsActive:     true,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	require.NoError(t, e.Store.InviteCodes().CreateInviteCode(context.Background(), c))
	return c
}

// wallet is a test signer.
type wallet struct {
	key     *ecdsa.PrivateKey
	Address string
}

func newWallet(t *testing.T) wallet {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return wallet{key: key, Address: strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())}
}

func (w wallet) sign(t *testing.T, msg string) string {
	t.Helper()

	sig, err := cryptox.SignText(w.key, msg)
	require.NoError(t, err)
	return sig
}

func (w wallet) codeReservation(t *testing.T, code, email string) service.CodeReservation {
	return service.CodeReservation{
		Code:          code,
		Email:         email,
		WalletAddress: w.Address,
		Signature:     w.sign(t, service.CodeMessage(code)),
		IPAddress:     "203.0.113.7",
		DeviceInfo:    []byte(`{"ua":"test"}`),
	}
}

func (w wallet) nftReservation(t *testing.T, tokenID uint64, email string) service.NFTReservation {
	return service.NFTReservation{
		Email:         email,
		WalletAddress: w.Address,
		TokenID:       tokenID,
		Signature:     w.sign(t, service.NFTMessage(tokenID)),
	}
}

var _ store.Store = (*sqlite.Store)(nil)
