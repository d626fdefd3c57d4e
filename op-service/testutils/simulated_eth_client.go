package testutils

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/require"
)

// SimulatedChainID is the chain id the simulated backend signs for.
var SimulatedChainID = big.NewInt(1337)

type SimulatedEthClient struct {
	key     *ecdsa.PrivateKey
	backend *simulated.Backend
	simulated.Client
}

type SimulatedEthClientConfig struct {
	GenesisAccountsBalances map[common.Address]*big.Int
	BlockGasLimit           uint64
}

func WithAccountBalance(address common.Address, balance *big.Int) func(*SimulatedEthClientConfig) {
	return func(c *SimulatedEthClientConfig) {
		c.GenesisAccountsBalances[address] = balance
	}
}

func WithBlockGasLimit(limit uint64) func(*SimulatedEthClientConfig) {
	return func(c *SimulatedEthClientConfig) {
		c.BlockGasLimit = limit
	}
}

// NewSimulatedEthClient starts an in-memory chain with a funded default account.
// The backend is closed when the test ends.
func NewSimulatedEthClient(t *testing.T, opts ...func(*SimulatedEthClientConfig)) *SimulatedEthClient {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	cfg := &SimulatedEthClientConfig{
		GenesisAccountsBalances: map[common.Address]*big.Int{},
		BlockGasLimit:           10_000_000,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	hundredEther := new(big.Int).Mul(big.NewInt(100), big.NewInt(params.Ether))
	genesisAlloc := types.GenesisAlloc{
		crypto.PubkeyToAddress(key.PublicKey): {Balance: hundredEther},
	}
	for addr, balance := range cfg.GenesisAccountsBalances {
		genesisAlloc[addr] = types.Account{Balance: balance}
	}

	backend := simulated.NewBackend(genesisAlloc, simulated.WithBlockGasLimit(cfg.BlockGasLimit))
	t.Cleanup(func() { _ = backend.Close() })
	return &SimulatedEthClient{
		key:     key,
		backend: backend,
		Client:  backend.Client(),
	}
}

func (c *SimulatedEthClient) PrivateKey() *ecdsa.PrivateKey {
	return c.key
}

func (c *SimulatedEthClient) Address() common.Address {
	return crypto.PubkeyToAddress(c.key.PublicKey)
}

func (c *SimulatedEthClient) Transactor(t *testing.T) *bind.TransactOpts {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, SimulatedChainID)
	require.NoError(t, err)
	return opts
}

func (c *SimulatedEthClient) Commit() common.Hash {
	return c.backend.Commit()
}

// AutoCommit mines a block at the given interval until ctx is done, so callers
// waiting on receipts make progress.
func (c *SimulatedEthClient) AutoCommit(ctx context.Context, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.backend.Commit()
			}
		}
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}
