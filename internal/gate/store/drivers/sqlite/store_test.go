package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/internal/gate/store"
	"github.com/aussiebroadwan/invitegate/internal/gate/store/drivers/sqlite"
	"github.com/aussiebroadwan/invitegate/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "gate.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedCode(t *testing.T, s store.Store, code string, maxUses int) domain.InviteCode {
	t.Helper()

	now := time.Now().UTC()
	c := domain.InviteCode{
		ID:           idx.New(),
		Code:         code,
		CreatorEmail: "creator@example.com",
		MaxUses:      maxUses,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.InviteCodes().CreateInviteCode(context.Background(), c))
	return c
}

func TestInviteCodes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created := seedCode(t, s, "ABCD1234", 2)

	t.Run("get by code", func(t *testing.T) {
		got, err := s.InviteCodes().GetInviteCodeByCode(ctx, "ABCD1234")
		require.NoError(t, err)
		require.Equal(t, created.ID, got.ID)
		require.Equal(t, 2, got.MaxUses)
		require.Zero(t, got.CurrentUses)
		require.True(t, got.IsActive)
		require.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Second)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := s.InviteCodes().GetInviteCodeByCode(ctx, "NOPE0000")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate code", func(t *testing.T) {
		dup := created
		dup.ID = idx.New()
		require.ErrorIs(t, s.InviteCodes().CreateInviteCode(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("increment is guarded by max uses", func(t *testing.T) {
		got, err := s.InviteCodes().IncrementInviteCodeUses(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, 1, got.CurrentUses)

		got, err = s.InviteCodes().IncrementInviteCodeUses(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, 2, got.CurrentUses)

		_, err = s.InviteCodes().IncrementInviteCodeUses(ctx, created.ID)
		require.ErrorIs(t, err, store.ErrQuotaExceeded)

		got, err = s.InviteCodes().GetInviteCodeByCode(ctx, "ABCD1234")
		require.NoError(t, err)
		require.Equal(t, 2, got.CurrentUses)
	})

	t.Run("count active", func(t *testing.T) {
		seedCode(t, s, "ZXCV5678", 1)

		n, err := s.InviteCodes().CountActiveInviteCodes(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n, "the exhausted code is not counted")
	})
}

func TestRegistrationsUniqueness(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tokenID := uint64(42)
	first := domain.Registration{
		ID:            idx.New(),
		Email:         "alice@example.com",
		WalletAddress: "0x1111111111111111111111111111111111111111",
		Signature:     "0xsig",
		Type:          domain.RegistrationNFT,
		TokenID:       &tokenID,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, s.Registrations().CreateRegistration(ctx, first))

	got, err := s.Registrations().GetRegistrationByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RegistrationNFT, got.Type)
	require.NotNil(t, got.TokenID)
	require.Equal(t, uint64(42), *got.TokenID)

	t.Run("duplicate email", func(t *testing.T) {
		r := first
		r.ID = idx.New()
		r.WalletAddress = "0x2222222222222222222222222222222222222222"
		require.ErrorIs(t, s.Registrations().CreateRegistration(ctx, r), store.ErrDuplicateEmail)
	})

	t.Run("duplicate wallet", func(t *testing.T) {
		r := first
		r.ID = idx.New()
		r.Email = "bob@example.com"
		require.ErrorIs(t, s.Registrations().CreateRegistration(ctx, r), store.ErrDuplicateWallet)
	})

	t.Run("existence checks", func(t *testing.T) {
		ok, err := s.Registrations().EmailRegistered(ctx, "alice@example.com")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = s.Registrations().WalletRegistered(ctx, "0x9999999999999999999999999999999999999999")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("counts by type", func(t *testing.T) {
		require.NoError(t, s.Registrations().CreateRegistration(ctx, domain.Registration{
			ID:            idx.New(),
			Email:         "carol@example.com",
			WalletAddress: "0x3333333333333333333333333333333333333333",
			InviteCode:    "ABCD1234",
			Signature:     "0xsig",
			Type:          domain.RegistrationInviteCode,
			CreatedAt:     time.Now().UTC(),
		}))

		counts, err := s.Registrations().CountRegistrationsByType(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, counts[domain.RegistrationNFT])
		require.Equal(t, 1, counts[domain.RegistrationInviteCode])
	})
}

func TestCodeUsages(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := seedCode(t, s, "AAAA1111", 5)
	b := seedCode(t, s, "BBBB2222", 5)

	base := time.Now().UTC()
	for i, email := range []string{"one@example.com", "two@example.com"} {
		require.NoError(t, s.CodeUsages().CreateCodeUsage(ctx, domain.CodeUsage{
			ID:           idx.New(),
			InviteCodeID: a.ID,
			UserEmail:    email,
			IPAddress:    "203.0.113.7",
			DeviceInfo:   []byte(`{"ua":"test"}`),
			UsedAt:       base.Add(time.Duration(i) * time.Second),
		}))
	}

	usages, err := s.CodeUsages().ListCodeUsagesByInviteCode(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, usages, 2)
	require.Equal(t, "one@example.com", usages[0].UserEmail)
	require.JSONEq(t, `{"ua":"test"}`, string(usages[0].DeviceInfo))

	redeemed, err := s.CodeUsages().EmailRedeemed(ctx, "two@example.com")
	require.NoError(t, err)
	require.True(t, redeemed)

	// Same email on a different code violates cross-code dedup.
	err = s.CodeUsages().CreateCodeUsage(ctx, domain.CodeUsage{
		ID:           idx.New(),
		InviteCodeID: b.ID,
		UserEmail:    "one@example.com",
		UsedAt:       time.Now().UTC(),
	})
	require.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := seedCode(t, s, "ROLL1234", 3)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.LockKeys(ctx, "email:x@example.com"))
		if _, err := tx.InviteCodes().IncrementInviteCodeUses(ctx, c.ID); err != nil {
			return err
		}
		return store.ErrDuplicateEmail
	})
	require.ErrorIs(t, err, store.ErrDuplicateEmail)

	got, err := s.InviteCodes().GetInviteCodeByCode(ctx, "ROLL1234")
	require.NoError(t, err)
	require.Zero(t, got.CurrentUses)
}

func TestConcurrentIncrementsNeverExceedQuota(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := seedCode(t, s, "RACE1234", 3)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.WithTx(ctx, func(tx store.Tx) error {
				locked, err := tx.InviteCodes().LockInviteCodeByCode(ctx, "RACE1234")
				if err != nil {
					return err
				}
				if !locked.Redeemable() {
					return store.ErrQuotaExceeded
				}
				_, err = tx.InviteCodes().IncrementInviteCodeUses(ctx, locked.ID)
				return err
			})
		}()
	}
	wg.Wait()

	var success int
	for _, err := range errs {
		if err == nil {
			success++
			continue
		}
		require.ErrorIs(t, err, store.ErrQuotaExceeded)
	}

	require.Equal(t, 3, success)
	got, err := s.InviteCodes().GetInviteCodeByCode(ctx, c.Code)
	require.NoError(t, err)
	require.Equal(t, 3, got.CurrentUses)
}

func TestDSN(t *testing.T) {
	dsn := sqlite.DSN("/tmp/gate.db")
	require.Contains(t, dsn, "_txlock=immediate")
	require.Contains(t, dsn, "journal_mode%28WAL%29")

	require.NotContains(t, sqlite.DSN(":memory:"), "journal_mode")
}
