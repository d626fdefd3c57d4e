package deployer

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"

	opservice "github.com/mantlenetworkio/deploy-tasks/op-service"
	oplog "github.com/mantlenetworkio/deploy-tasks/op-service/log"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/registry"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/env"
)

const EnvVarPrefix = "TASK_DEPLOYER"

const (
	NetworkFlagName          = "network"
	NetworksFileFlagName     = "networks-file"
	RPCURLFlagName           = "rpc-url"
	ChainIDFlagName          = "chain-id"
	PrivateKeyFlagName       = "private-key"
	ArtifactsLocatorFlagName = "artifacts-locator"
	CacheDirFlagName         = "cache-dir"
	DeploymentsFileFlagName  = "deployments-file"
	EtherscanAPIKeyFlagName  = "etherscan-api-key"
	TenderlyForkIDFlagName   = "tenderly-fork-id"
)

func PrefixEnvVar(name string) []string {
	return opservice.PrefixEnvVar(EnvVarPrefix, name)
}

var (
	NetworkFlag = &cli.StringFlag{
		Name:    NetworkFlagName,
		Usage:   "Name of the network to run against.",
		EnvVars: PrefixEnvVar("NETWORK"),
		Value:   "hardhat",
	}
	NetworksFileFlag = &cli.StringFlag{
		Name:    NetworksFileFlagName,
		Usage:   "TOML file with per-network rpc-url, chain-id and tenderly-fork-id overrides.",
		EnvVars: PrefixEnvVar("NETWORKS_FILE"),
	}
	RPCURLFlag = &cli.StringFlag{
		Name:    RPCURLFlagName,
		Usage:   "RPC URL of the network. Overrides the networks file.",
		EnvVars: PrefixEnvVar("RPC_URL"),
	}
	ChainIDFlag = &cli.Uint64Flag{
		Name:    ChainIDFlagName,
		Usage:   "Chain ID of the network. Overrides the networks file and built-in defaults.",
		EnvVars: PrefixEnvVar("CHAIN_ID"),
	}
	PrivateKeyFlag = &cli.StringFlag{
		Name:    PrivateKeyFlagName,
		Usage:   "Private key of the deployer account.",
		EnvVars: PrefixEnvVar("PRIVATE_KEY"),
	}
	ArtifactsLocatorFlag = &cli.StringFlag{
		Name:    ArtifactsLocatorFlagName,
		Usage:   "Hardhat artifacts directory, or http(s) URL of a gzipped tarball of one.",
		EnvVars: PrefixEnvVar("ARTIFACTS_LOCATOR"),
		Value:   "artifacts",
	}
	CacheDirFlag = &cli.StringFlag{
		Name:    CacheDirFlagName,
		Usage:   "Cache directory for downloaded artifacts.",
		EnvVars: PrefixEnvVar("CACHE_DIR"),
		Value:   DefaultCacheDir(),
	}
	DeploymentsFileFlag = &cli.StringFlag{
		Name:    DeploymentsFileFlagName,
		Usage:   "JSON file deployed contract addresses are recorded in.",
		EnvVars: PrefixEnvVar("DEPLOYMENTS_FILE"),
		Value:   registry.DefaultFileName,
	}
	EtherscanAPIKeyFlag = &cli.StringFlag{
		Name:    EtherscanAPIKeyFlagName,
		Usage:   "Etherscan (or Polygonscan) API key used for source verification.",
		EnvVars: append(PrefixEnvVar("ETHERSCAN_API_KEY"), "ETHERSCAN_KEY"),
	}
	TenderlyForkIDFlag = &cli.StringFlag{
		Name:    TenderlyForkIDFlagName,
		Usage:   "Tenderly fork ID. Derived from the RPC URL when unset.",
		EnvVars: append(PrefixEnvVar("TENDERLY_FORK_ID"), "TENDERLY_FORK_ID"),
	}
)

var GlobalFlags = append([]cli.Flag{
	NetworkFlag,
	NetworksFileFlag,
	RPCURLFlag,
	ChainIDFlag,
	PrivateKeyFlag,
	ArtifactsLocatorFlag,
	CacheDirFlag,
	DeploymentsFileFlag,
	EtherscanAPIKeyFlag,
	TenderlyForkIDFlag,
}, oplog.CLIFlags(EnvVarPrefix)...)

// ReadEnvConfig collects the runtime environment inputs from the global flags.
func ReadEnvConfig(cliCtx *cli.Context) env.Config {
	return env.Config{
		Network:        cliCtx.String(NetworkFlagName),
		NetworksFile:   cliCtx.String(NetworksFileFlagName),
		RPCURL:         cliCtx.String(RPCURLFlagName),
		ChainID:        cliCtx.Uint64(ChainIDFlagName),
		TenderlyForkID: cliCtx.String(TenderlyForkIDFlagName),
		Tenderly:       env.TenderlyFromEnv(),
	}
}

// ParsePrivateKey decodes a hex private key, with or without 0x prefix.
func ParsePrivateKey(hex string) (*ecdsa.PrivateKey, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "0x")
	if hex == "" {
		return nil, fmt.Errorf("missing required flag: --%s", PrivateKeyFlagName)
	}
	key, err := crypto.HexToECDSA(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}
