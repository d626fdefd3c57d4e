package uipool

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/deploy-tasks/op-service/ctxinterrupt"
	"github.com/mantlenetworkio/deploy-tasks/op-service/ioutil"
	oplog "github.com/mantlenetworkio/deploy-tasks/op-service/log"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/artifacts"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/broadcaster"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/contracts"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/registry"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/tenderly"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/verify"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/env"
)

type chainBackend interface {
	broadcaster.Backend
	ChainID(ctx context.Context) (*big.Int, error)
}

type connectConfig struct {
	env              *env.Environment
	privateKey       string
	artifactsLocator string
	cacheDir         string
	deploymentsFile  string
	etherscanAPIKey  string
	verify           bool
}

func DeployCLI(cliCtx *cli.Context) error {
	logCfg := oplog.ReadCLIConfig(cliCtx)
	l := oplog.NewLogger(oplog.AppOut(cliCtx), logCfg)
	oplog.SetGlobalLogHandler(l.Handler())

	e, err := env.New(deployer.ReadEnvConfig(cliCtx))
	if err != nil {
		return err
	}

	cc := connectConfig{
		env:              e,
		privateKey:       cliCtx.String(deployer.PrivateKeyFlagName),
		artifactsLocator: cliCtx.String(deployer.ArtifactsLocatorFlagName),
		cacheDir:         cliCtx.String(deployer.CacheDirFlagName),
		deploymentsFile:  cliCtx.String(deployer.DeploymentsFileFlagName),
		etherscanAPIKey:  cliCtx.String(deployer.EtherscanAPIKeyFlagName),
		verify:           cliCtx.Bool(VerifyFlagName),
	}
	out := cliCtx.App.Writer

	ctx := ctxinterrupt.WithCancelOnInterrupt(cliCtx.Context)
	_, err = Deploy(ctx, Config{
		Env:    e,
		Verify: cc.verify,
		Out:    out,
		Logger: l,
		Connect: func(ctx context.Context) (*Backend, error) {
			return connect(ctx, cc, out, l)
		},
	})
	return err
}

func connect(ctx context.Context, cc connectConfig, out io.Writer, l log.Logger) (*Backend, error) {
	e := cc.env
	if e.RPCURL == "" {
		return nil, fmt.Errorf("no rpc url for network %s, set --%s or the networks file", e.Network, deployer.RPCURLFlagName)
	}
	key, err := deployer.ParsePrivateKey(cc.privateKey)
	if err != nil {
		return nil, err
	}
	loc, err := artifacts.NewLocatorFromURL(cc.artifactsLocator)
	if err != nil {
		return nil, fmt.Errorf("invalid artifacts locator: %w", err)
	}

	var (
		client  chainBackend
		sim     Simulation
		closeFn func()
	)
	if e.UsingTenderly() {
		tc, err := tenderly.Dial(ctx, e.RPCURL, e.TenderlyForkID, l)
		if err != nil {
			return nil, err
		}
		client, sim, closeFn = tc, tc, tc.Close
	} else {
		ec, err := ethclient.DialContext(ctx, e.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("failed to dial %s: %w", e.RPCURL, err)
		}
		client, closeFn = ec, ec.Close
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("failed to fetch chain id: %w", err)
	}
	if chainID.Uint64() != e.ChainID {
		closeFn()
		return nil, fmt.Errorf("rpc chain id %d does not match network %s chain id %d", chainID, e.Network, e.ChainID)
	}

	afs, err := artifacts.Download(ctx, loc, ioutil.TerminalProgressor(l, "downloading artifacts"), cc.cacheDir)
	if err != nil {
		closeFn()
		return nil, err
	}

	creator, err := broadcaster.NewKeyedDeployer(client, key, chainID, l)
	if err != nil {
		closeFn()
		return nil, err
	}
	l.Info("deployer account", "address", creator.From(), "chainID", chainID)

	helper := &contracts.Helper{
		Network:   e.Network,
		Artifacts: afs,
		Creator:   creator,
		Registry:  registry.NewOS(cc.deploymentsFile),
		Out:       out,
		Logger:    l,
	}
	if cc.verify {
		helper.Verifier = verify.NewVerifier(e.Network, cc.etherscanAPIKey, out, l)
	}
	return &Backend{
		Deployer:   helper,
		Simulation: sim,
		Close:      closeFn,
	}, nil
}
