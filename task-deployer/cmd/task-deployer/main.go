package main

import (
	"os"

	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/cli"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/version"

	opservice "github.com/mantlenetworkio/deploy-tasks/op-service"
)

var (
	GitCommit = ""
	GitDate   = ""
)

// VersionWithMeta holds the textual version string including the metadata.
var VersionWithMeta = opservice.FormatVersion(version.Version, GitCommit, GitDate, version.Meta)

func main() {
	app := cli.NewApp(VersionWithMeta)
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr
	if err := app.Run(os.Args); err != nil {
		cli.ReportError(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}
