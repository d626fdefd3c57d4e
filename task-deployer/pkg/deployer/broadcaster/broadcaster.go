// Package broadcaster signs and sends contract-creation transactions.
package broadcaster

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/artifacts"
)

// Backend is the chain access needed to deploy and await a contract.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// DeployedContract describes a mined contract creation.
type DeployedContract struct {
	Address     common.Address
	TxHash      common.Hash
	Deployer    common.Address
	GasUsed     uint64
	GasPrice    *big.Int
	BlockNumber uint64
}

type KeyedDeployer struct {
	backend Backend
	opts    *bind.TransactOpts
	lgr     log.Logger
}

func NewKeyedDeployer(backend Backend, key *ecdsa.PrivateKey, chainID *big.Int, lgr log.Logger) (*KeyedDeployer, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	return &KeyedDeployer{
		backend: backend,
		opts:    opts,
		lgr:     lgr,
	}, nil
}

func (d *KeyedDeployer) From() common.Address {
	return d.opts.From
}

// Deploy sends the creation transaction for art with the given constructor
// arguments and blocks until it is mined. A reverted creation is an error.
func (d *KeyedDeployer) Deploy(ctx context.Context, art *artifacts.Artifact, args ...any) (*DeployedContract, error) {
	code, err := art.CreationCode()
	if err != nil {
		return nil, err
	}

	opts := *d.opts
	opts.Context = ctx
	addr, tx, _, err := bind.DeployContract(&opts, art.ABI, code, d.backend, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s creation transaction: %w", art.ContractName, err)
	}
	d.lgr.Info("sent contract creation", "contract", art.ContractName, "tx", tx.Hash(), "address", addr)

	receipt, err := bind.WaitMined(ctx, d.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for %s creation: %w", art.ContractName, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%s creation reverted in tx %s", art.ContractName, tx.Hash())
	}

	gasPrice := receipt.EffectiveGasPrice
	if gasPrice == nil {
		gasPrice = tx.GasPrice()
	}
	var blockNumber uint64
	if receipt.BlockNumber != nil {
		blockNumber = receipt.BlockNumber.Uint64()
	}
	d.lgr.Debug("contract creation mined", "contract", art.ContractName, "block", blockNumber, "gasUsed", receipt.GasUsed)

	return &DeployedContract{
		Address:     addr,
		TxHash:      tx.Hash(),
		Deployer:    d.opts.From,
		GasUsed:     receipt.GasUsed,
		GasPrice:    gasPrice,
		BlockNumber: blockNumber,
	}, nil
}
