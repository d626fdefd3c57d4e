// Package uipool deploys the UiPoolDataProvider with the addresses configured
// for the active network.
package uipool

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/broadcaster"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/networks"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/env"
)

const ContractID = "UiPoolDataProvider"

type ContractDeployer interface {
	DeployAndVerify(ctx context.Context, id string, args []any, verify bool) (*broadcaster.DeployedContract, error)
}

// Simulation exposes the identifiers of a Tenderly fork.
type Simulation interface {
	Head() string
	Fork() string
}

// Backend is what Connect provides once the network is known to be supported.
// Simulation is only consulted when the environment is a Tenderly fork.
type Backend struct {
	Deployer   ContractDeployer
	Simulation Simulation
	Close      func()
}

type Config struct {
	Env    *env.Environment
	Verify bool
	Out    io.Writer
	Logger log.Logger

	Connect func(ctx context.Context) (*Backend, error)
}

func (c *Config) Check() error {
	if c.Env == nil {
		return fmt.Errorf("environment must be specified")
	}
	if c.Out == nil {
		return fmt.Errorf("output writer must be specified")
	}
	if c.Logger == nil {
		return fmt.Errorf("logger must be specified")
	}
	if c.Connect == nil {
		return fmt.Errorf("connect must be specified")
	}
	return nil
}

// Deploy runs the task. An unsupported network yields *networks.UnsupportedNetworkError
// before any connection is made.
func Deploy(ctx context.Context, cfg Config) (*broadcaster.DeployedContract, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config for UiPoolDataProvider deployment: %w", err)
	}
	if err := cfg.Env.CheckChainID(); err != nil {
		return nil, err
	}

	addrs, err := networks.Resolve(cfg.Env.Network)
	if err != nil {
		return nil, err
	}

	out := cfg.Out
	_, _ = fmt.Fprintf(out, "\n- %s deployment\n", ContractID)
	_, _ = fmt.Fprintln(out, "- Params")
	_, _ = fmt.Fprintln(out, "-  IncentivesController", addrs.IncentivesController)
	_, _ = fmt.Fprintln(out, "-  AaveOracle", addrs.PriceOracle)

	backend, err := cfg.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Env.Network, err)
	}
	if backend.Close != nil {
		defer backend.Close()
	}

	deployed, err := backend.Deployer.DeployAndVerify(ctx, ContractID, addrs.ConstructorArgs(), cfg.Verify)
	if err != nil {
		return nil, err
	}

	_, _ = fmt.Fprintf(out, "%s deployed at: %s\n", ContractID, deployed.Address.Hex())
	_, _ = fmt.Fprintf(out, "\tFinished %s deployment\n", ContractID)
	cfg.Logger.Info("deployment complete", "contract", ContractID, "network", cfg.Env.Network, "address", deployed.Address)

	if cfg.Env.UsingTenderly() {
		if backend.Simulation == nil {
			return nil, fmt.Errorf("tenderly environment without a simulation backend")
		}
		_, _ = fmt.Fprintln(out, "Tenderly Info")
		_, _ = fmt.Fprintln(out, "- Head", backend.Simulation.Head())
		_, _ = fmt.Fprintln(out, "- Fork", backend.Simulation.Fork())
	}
	return deployed, nil
}
