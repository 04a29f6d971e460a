//go:build e2e

package gate_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/invitegate/internal/gate/service"
	"github.com/aussiebroadwan/invitegate/pkg/gatesdk"
	"github.com/stretchr/testify/require"
)

// TestInviteCodeLifecycle creates a single use code, redeems it and checks
// every read endpoint reflects the redemption.
func TestInviteCodeLifecycle(t *testing.T) {
	client := setupGateContainer(t, nil)
	ctx := t.Context()

	t.Run("creation requires a creator token", func(t *testing.T) {
		_, err := client.CreateInviteCode(ctx, gatesdk.CreateInviteCodeRequest{MaxUses: 1})
		requireAPIError(t, err, http.StatusUnauthorized, gatesdk.ErrorCodeInvalidToken)
	})

	client.Token = creatorToken(t, "creator@example.com")
	created, err := client.CreateInviteCode(ctx, gatesdk.CreateInviteCodeRequest{MaxUses: 1})
	require.NoError(t, err)
	require.Equal(t, "creator@example.com", created.CreatorEmail)
	require.True(t, created.IsActive)

	ok, err := client.VerifyCode(ctx, created.Code)
	require.NoError(t, err)
	require.True(t, ok)

	alice := newWallet(t)
	id, err := client.Reserve(ctx, gatesdk.ReserveRequest{
		Code:          created.Code,
		Email:         "alice@example.com",
		WalletAddress: alice.address,
		Signature:     alice.sign(t, service.CodeMessage(created.Code)),
		DeviceInfo:    []byte(`{"platform":"e2e"}`),
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	t.Run("code is exhausted", func(t *testing.T) {
		ok, err := client.VerifyCode(ctx, created.Code)
		require.NoError(t, err)
		require.False(t, ok)

		bob := newWallet(t)
		_, err = client.Reserve(ctx, gatesdk.ReserveRequest{
			Code:          created.Code,
			Email:         "bob@example.com",
			WalletAddress: bob.address,
			Signature:     bob.sign(t, service.CodeMessage(created.Code)),
		})
		requireAPIError(t, err, http.StatusConflict, gatesdk.ErrorCodeCodeExhausted)
	})

	t.Run("identities are marked used", func(t *testing.T) {
		used, err := client.EmailUsed(ctx, "alice@example.com")
		require.NoError(t, err)
		require.True(t, used)

		used, err = client.WalletUsed(ctx, alice.address)
		require.NoError(t, err)
		require.True(t, used)
	})

	t.Run("stats list the redemption", func(t *testing.T) {
		stats, err := client.InviteCodeStats(ctx, created.Code)
		require.NoError(t, err)
		require.Equal(t, 1, stats.UsageCount)
		require.Equal(t, 0, stats.RemainingUses)
		require.Len(t, stats.Usages, 1)
		require.Equal(t, "alice@example.com", stats.Usages[0].UserEmail)
	})
}

func TestReserveWithForeignSignature(t *testing.T) {
	client := setupGateContainer(t, nil)
	ctx := t.Context()

	client.Token = creatorToken(t, "creator@example.com")
	created, err := client.CreateInviteCode(ctx, gatesdk.CreateInviteCodeRequest{MaxUses: 3})
	require.NoError(t, err)

	alice, mallory := newWallet(t), newWallet(t)
	_, err = client.Reserve(ctx, gatesdk.ReserveRequest{
		Code:          created.Code,
		Email:         "alice@example.com",
		WalletAddress: alice.address,
		Signature:     mallory.sign(t, service.CodeMessage(created.Code)),
	})
	requireAPIError(t, err, http.StatusBadRequest, gatesdk.ErrorCodeInvalidSignature)

	stats, err := client.InviteCodeStats(ctx, created.Code)
	require.NoError(t, err)
	require.Zero(t, stats.UsageCount)
}

// TestNFTRegistrationWithoutLedger checks that an unreachable staking ledger
// fails closed with a retryable error instead of registering anyone.
func TestNFTRegistrationWithoutLedger(t *testing.T) {
	client := setupGateContainer(t, nil)
	ctx := t.Context()

	w := newWallet(t)
	_, err := client.RegisterNFT(ctx, gatesdk.RegisterNFTRequest{
		Email:         "holder@example.com",
		WalletAddress: w.address,
		TokenID:       7,
		Signature:     w.sign(t, service.NFTMessage(7)),
	})
	requireAPIError(t, err, http.StatusServiceUnavailable, gatesdk.ErrorCodeEligibilityCheckFailed)

	var apiErr *gatesdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.True(t, apiErr.Retryable())

	used, err := client.WalletUsed(ctx, w.address)
	require.NoError(t, err)
	require.False(t, used)
}
