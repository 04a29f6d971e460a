//go:build e2e

package gate_test

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/invitegate/pkg/cryptox"
	"github.com/aussiebroadwan/invitegate/pkg/gatesdk"
	"github.com/aussiebroadwan/invitegate/pkg/jwtx"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and helpers for the invite gate end-to-end tests. The
 * image runs with sqlite and in-process state, and its RPC endpoint points
 * at a closed port so the staking ledger is always unreachable.
 */

const (
	testImageName = "invitegate-test:latest"

	creatorSecret   = "e2e-creator-secret-0123456789abcdef"
	creatorIssuer   = "invitegate-e2e"
	stakingContract = "0x52908400098527886E0F7030069857D2E4169EE7"
)

func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building invite gate Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up invite gate Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/invitegate/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

// setupGateContainer starts the gate and returns a client for it. Extra env
// entries override the defaults.
func setupGateContainer(t *testing.T, extra map[string]string) *gatesdk.Client {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"ENV":                     "test",
		"LOG_LEVEL":               "info",
		"GATE_STAKING_CONTRACT":   stakingContract,
		"GATE_RPC_URL":            "http://127.0.0.1:1",
		"GATE_RPC_TIMEOUT":        "1s",
		"GATE_CREATOR_JWT_SECRET": creatorSecret,
		"GATE_CREATOR_JWT_ISSUER": creatorIssuer,
		"GATE_RATELIMIT_POINTS":   "1000",
	}
	for k, v := range extra {
		env[k] = v
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/readyz").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return gatesdk.NewClient(fmt.Sprintf("http://%s:%s", host, mappedPort.Port()))
}

// creatorToken mints a token the container accepts.
func creatorToken(t *testing.T, email string) string {
	t.Helper()
	signer, err := jwtx.NewHS256([]byte(creatorSecret), creatorIssuer)
	require.NoError(t, err)

	token, err := signer.Sign(jwtx.NewCreatorClaims(email, creatorIssuer, time.Hour, time.Now()))
	require.NoError(t, err)
	return token
}

type wallet struct {
	key     *ecdsa.PrivateKey
	address string
}

func newWallet(t *testing.T) wallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return wallet{key: key, address: crypto.PubkeyToAddress(key.PublicKey).Hex()}
}

func (w wallet) sign(t *testing.T, message string) string {
	t.Helper()
	sig, err := cryptox.SignText(w.key, message)
	require.NoError(t, err)
	return sig
}

// requireAPIError asserts err carries the given status and error code.
func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *gatesdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Error())
	require.Equal(t, code, apiErr.Code)
}
