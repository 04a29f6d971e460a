//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/internal/gate/store"
	"github.com/aussiebroadwan/invitegate/internal/gate/store/drivers/postgres"
	"github.com/aussiebroadwan/invitegate/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *postgres.Store {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "gate",
				"POSTGRES_PASSWORD": "gate",
				"POSTGRES_DB":       "gate",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	s, err := postgres.NewStore(postgres.DSN(host, port.Int(), "gate", "gate", "gate", "disable"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	s := startPostgres(t)

	now := time.Now().UTC()
	code := domain.InviteCode{
		ID:           idx.New(),
		Code:         "PGCODE01",
		CreatorEmail: "creator@example.com",
		MaxUses:      3,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.InviteCodes().CreateInviteCode(ctx, code))

	t.Run("duplicate code", func(t *testing.T) {
		dup := code
		dup.ID = idx.New()
		require.ErrorIs(t, s.InviteCodes().CreateInviteCode(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("row lock serialises increments", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = s.WithTx(ctx, func(tx store.Tx) error {
					if err := tx.LockKeys(ctx, "code:PGCODE01"); err != nil {
						return err
					}
					locked, err := tx.InviteCodes().LockInviteCodeByCode(ctx, "PGCODE01")
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

		var ok int
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			require.ErrorIs(t, err, store.ErrQuotaExceeded)
		}
		require.Equal(t, 3, ok)

		got, err := s.InviteCodes().GetInviteCodeByCode(ctx, "PGCODE01")
		require.NoError(t, err)
		require.Equal(t, 3, got.CurrentUses)
	})

	t.Run("identity uniqueness", func(t *testing.T) {
		reg := domain.Registration{
			ID:            idx.New(),
			Email:         "alice@example.com",
			WalletAddress: "0x1111111111111111111111111111111111111111",
			InviteCode:    "PGCODE01",
			Signature:     "0xsig",
			Type:          domain.RegistrationInviteCode,
			CreatedAt:     now,
		}
		require.NoError(t, s.Registrations().CreateRegistration(ctx, reg))

		dupEmail := reg
		dupEmail.ID = idx.New()
		dupEmail.WalletAddress = "0x2222222222222222222222222222222222222222"
		require.ErrorIs(t, s.Registrations().CreateRegistration(ctx, dupEmail), store.ErrDuplicateEmail)

		dupWallet := reg
		dupWallet.ID = idx.New()
		dupWallet.Email = "bob@example.com"
		require.ErrorIs(t, s.Registrations().CreateRegistration(ctx, dupWallet), store.ErrDuplicateWallet)

		counts, err := s.Registrations().CountRegistrationsByType(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, counts[domain.RegistrationInviteCode])
	})

	t.Run("code usages", func(t *testing.T) {
		u := domain.CodeUsage{
			ID:           idx.New(),
			InviteCodeID: code.ID,
			UserEmail:    "alice@example.com",
			IPAddress:    "203.0.113.9",
			DeviceInfo:   []byte(`{"ua":"test"}`),
			UsedAt:       now,
		}
		require.NoError(t, s.CodeUsages().CreateCodeUsage(ctx, u))

		dup := u
		dup.ID = idx.New()
		require.ErrorIs(t, s.CodeUsages().CreateCodeUsage(ctx, dup), store.ErrDuplicateEmail)

		usages, err := s.CodeUsages().ListCodeUsagesByInviteCode(ctx, code.ID)
		require.NoError(t, err)
		require.Len(t, usages, 1)
	})
}
