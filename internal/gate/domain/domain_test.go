package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/stretchr/testify/require"
)

func TestEvaluateStake(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()
	day := 24 * time.Hour

	t.Run("staked eight days", func(t *testing.T) {
		e := domain.EvaluateStake(domain.Stake{IsStaked: true, Since: now.Add(-8 * day)}, now)
		require.True(t, e.IsEligible)
		require.NotNil(t, e.RemainingTime)
		require.Zero(t, *e.RemainingTime)
		require.Equal(t, int64(0), *e.RemainingSeconds())
	})

	t.Run("staked two days", func(t *testing.T) {
		e := domain.EvaluateStake(domain.Stake{IsStaked: true, Since: now.Add(-2 * day)}, now)
		require.False(t, e.IsEligible)
		require.Equal(t, 5*day, *e.RemainingTime)
		require.Equal(t, int64(5*86400), *e.RemainingSeconds())
	})

	t.Run("exactly seven days", func(t *testing.T) {
		e := domain.EvaluateStake(domain.Stake{IsStaked: true, Since: now.Add(-7 * day)}, now)
		require.True(t, e.IsEligible)
	})

	t.Run("not staked", func(t *testing.T) {
		e := domain.EvaluateStake(domain.Stake{IsStaked: false, Since: now.Add(-30 * day)}, now)
		require.False(t, e.IsEligible)
		require.Nil(t, e.RemainingTime)
		require.Nil(t, e.RemainingSeconds())
	})
}

func TestInviteCodeUsage(t *testing.T) {
	c := domain.InviteCode{MaxUses: 2, CurrentUses: 1, IsActive: true}
	require.True(t, c.Redeemable())
	require.Equal(t, 1, c.RemainingUses())

	c.CurrentUses = 2
	require.True(t, c.Exhausted())
	require.False(t, c.Redeemable())
	require.Zero(t, c.RemainingUses())

	c = domain.InviteCode{MaxUses: 5, IsActive: false}
	require.False(t, c.Redeemable())
}

func TestNormalizeEmail(t *testing.T) {
	got, err := domain.NormalizeEmail("  Alice@Example.COM ")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", got)

	for _, in := range []string{"", "nope", "Alice <alice@example.com>", "a@", "@b.com"} {
		_, err := domain.NormalizeEmail(in)
		require.ErrorIs(t, err, domain.ErrInvalidEmail, "input %q", in)
	}
}

func TestNormalizeWallet(t *testing.T) {
	got, err := domain.NormalizeWallet("0x52908400098527886E0F7030069857D2E4169EE7")
	require.NoError(t, err)
	require.Equal(t, "0x52908400098527886e0f7030069857d2e4169ee7", got)

	for _, in := range []string{"", "0x1234", "52908400098527886E0F7030069857D2E4169EE7", "0xZZ908400098527886E0F7030069857D2E4169EE7"} {
		_, err := domain.NormalizeWallet(in)
		require.ErrorIs(t, err, domain.ErrInvalidWallet, "input %q", in)
	}
}

func TestNormalizeCode(t *testing.T) {
	got, err := domain.NormalizeCode(" ABCD1234 ")
	require.NoError(t, err)
	require.Equal(t, "ABCD1234", got)

	_, err = domain.NormalizeCode("ABC")
	require.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestValidateTokenID(t *testing.T) {
	require.NoError(t, domain.ValidateTokenID(0))
	require.NoError(t, domain.ValidateTokenID(domain.MaxTokenID))
	require.ErrorIs(t, domain.ValidateTokenID(domain.MaxTokenID+1), domain.ErrInvalidTokenID)
	require.ErrorIs(t, domain.ValidateTokenID(^uint64(0)), domain.ErrInvalidTokenID)
}
