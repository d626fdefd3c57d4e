package uipool

import (
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer"
)

const VerifyFlagName = "verify"

var VerifyFlag = &cli.BoolFlag{
	Name:    VerifyFlagName,
	Usage:   "Verify UiPoolDataProvider contract via Etherscan API.",
	EnvVars: deployer.PrefixEnvVar("VERIFY"),
}

var Flags = []cli.Flag{
	VerifyFlag,
}
