// Package chain reads the NFT staking contract.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"
)

// ErrProvider wraps every failure talking to the RPC provider or decoding its
// reply. It never means "not eligible".
var ErrProvider = errors.New("chain: provider error")

// StakingLedger is the read-only view of the staking contract.
type StakingLedger interface {
	Stakes(ctx context.Context, tokenID uint64) (domain.Stake, error)
	MeetsStakingRequirement(ctx context.Context, tokenID uint64) (bool, error)
}

// ContractCaller executes eth_call. *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// StakingABI covers the two view functions the gate needs.
const StakingABI = `[
	{"type":"function","name":"stakes","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"isStaked","type":"bool"},{"name":"timestamp","type":"uint256"}]},
	{"type":"function","name":"meetsStakingRequirement","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`

var stakingABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(StakingABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// Client calls the staking contract through a throttled ContractCaller.
type Client struct {
	caller   ContractCaller
	contract common.Address
	limiter  *rate.Limiter
	close    func()
}

// NewClient wraps caller. rps <= 0 disables throttling.
func NewClient(caller ContractCaller, contract common.Address, rps float64) *Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		caller:   caller,
		contract: contract,
		limiter:  rate.NewLimiter(limit, 1),
		close:    func() {},
	}
}

// Dial connects to the JSON-RPC endpoint at url.
func Dial(ctx context.Context, url string, contract common.Address, rps float64) (*Client, error) {
	ec, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %w", ErrProvider, err)
	}

	c := NewClient(ec, contract, rps)
	c.close = ec.Close
	return c, nil
}

func (c *Client) Close() { c.close() }

func (c *Client) Stakes(ctx context.Context, tokenID uint64) (domain.Stake, error) {
	out, err := c.call(ctx, "stakes", tokenID)
	if err != nil {
		return domain.Stake{}, err
	}

	staked, ok1 := out[0].(bool)
	ts, ok2 := out[1].(*big.Int)
	if !ok1 || !ok2 || !ts.IsInt64() {
		return domain.Stake{}, fmt.Errorf("%w: unexpected stakes reply", ErrProvider)
	}

	s := domain.Stake{IsStaked: staked}
	if ts.Sign() > 0 {
		s.Since = time.Unix(ts.Int64(), 0).UTC()
	}
	return s, nil
}

func (c *Client) MeetsStakingRequirement(ctx context.Context, tokenID uint64) (bool, error) {
	out, err := c.call(ctx, "meetsStakingRequirement", tokenID)
	if err != nil {
		return false, err
	}

	ok, valid := out[0].(bool)
	if !valid {
		return false, fmt.Errorf("%w: unexpected meetsStakingRequirement reply", ErrProvider)
	}
	return ok, nil
}

func (c *Client) call(ctx context.Context, method string, tokenID uint64) ([]any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: throttled: %w", ErrProvider, err)
	}

	input, err := stakingABI.Pack(method, new(big.Int).SetUint64(tokenID))
	if err != nil {
		return nil, fmt.Errorf("%w: pack %s: %w", ErrProvider, method, err)
	}

	raw, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrProvider, method, err)
	}

	out, err := stakingABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack %s: %w", ErrProvider, method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty %s reply", ErrProvider, method)
	}
	return out, nil
}
