package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/deploy-tasks/op-service/cliapp"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/networks"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/uipool"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/env"
)

const (
	ExitCodeFailure            = 1
	ExitCodeUnsupportedNetwork = 2
)

// NewApp creates and configures a new CLI application
func NewApp(versionWithMeta string) *cli.App {
	app := cli.NewApp()
	app.Version = versionWithMeta
	app.Name = "task-deployer"
	app.Usage = "Per-network deployment tasks for the lending pool periphery contracts."
	app.Flags = cliapp.ProtectFlags(deployer.GlobalFlags)
	// exit codes are decided by the caller from the returned error
	app.ExitErrHandler = func(*cli.Context, error) {}
	app.Before = func(context *cli.Context) error {
		if err := deployer.CreateCacheDir(context.String(deployer.CacheDirFlagName)); err != nil {
			return err
		}
		return nil
	}
	app.Commands = []*cli.Command{
		{
			Name:   "deploy-" + uipool.ContractID,
			Usage:  "Deploys the UiPoolDataProvider contract",
			Flags:  cliapp.ProtectFlags(uipool.Flags),
			Action: uipool.DeployCLI,
		},
		{
			Name:  "networks",
			Usage: "lists the networks UiPoolDataProvider can be deployed to",
			Action: func(cliCtx *cli.Context) error {
				networks.PrintTable(cliCtx.App.Writer, env.DefaultChainID)
				return nil
			},
		},
	}
	return app
}

// ExitCode maps an error returned by the app to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var unsupported *networks.UnsupportedNetworkError
	if errors.As(err, &unsupported) {
		return ExitCodeUnsupportedNetwork
	}
	return ExitCodeFailure
}

// ReportError writes err to w in the form matching its exit code.
func ReportError(w io.Writer, err error) {
	var unsupported *networks.UnsupportedNetworkError
	if errors.As(err, &unsupported) {
		_, _ = color.New(color.FgRed).Fprintf(w, "[task][error] %s\n", unsupported.Error())
		return
	}
	_, _ = fmt.Fprintf(w, "Application failed: %v\n", err)
}
