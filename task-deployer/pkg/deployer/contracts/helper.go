// Package contracts deploys a contract by artifact name, records it in the
// deployments registry and optionally verifies its source.
package contracts

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/artifacts"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/broadcaster"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/registry"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/verify"
)

type ArtifactSource interface {
	FindArtifact(name string) (*artifacts.Artifact, error)
	ReadBuildInfo(art *artifacts.Artifact) (*artifacts.BuildInfo, error)
}

type Creator interface {
	Deploy(ctx context.Context, art *artifacts.Artifact, args ...any) (*broadcaster.DeployedContract, error)
}

type Verifier interface {
	Verify(ctx context.Context, req verify.Request) error
}

type Helper struct {
	Network   string
	Artifacts ArtifactSource
	Creator   Creator
	Registry  *registry.Registry
	// Verifier may be nil when verification is never requested.
	Verifier Verifier
	Out      io.Writer
	Logger   log.Logger
}

// DeployAndVerify deploys the contract named id with args and registers it.
// Verification is best-effort: its failures are reported and swallowed.
func (h *Helper) DeployAndVerify(ctx context.Context, id string, args []any, verifyContract bool) (*broadcaster.DeployedContract, error) {
	art, err := h.Artifacts.FindArtifact(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact: %w", err)
	}

	deployed, err := h.Creator.Deploy(ctx, art, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", id, err)
	}

	if err := h.Registry.Register(id, h.Network, registry.Entry{
		Address:  deployed.Address,
		Deployer: deployed.Deployer,
	}); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", id, err)
	}
	h.printSummary(id, deployed)

	if verifyContract {
		if err := h.verify(ctx, art, deployed, args); err != nil {
			_, _ = fmt.Fprintf(h.Out, "[ETHERSCAN][ERROR] %s verification failed: %v\n", id, err)
			h.Logger.Error("verification failed", "contract", id, "address", deployed.Address, "err", err)
		}
	}
	return deployed, nil
}

func (h *Helper) verify(ctx context.Context, art *artifacts.Artifact, deployed *broadcaster.DeployedContract, args []any) error {
	if h.Verifier == nil {
		return fmt.Errorf("no verifier configured")
	}
	bi, err := h.Artifacts.ReadBuildInfo(art)
	if err != nil {
		return err
	}
	compiler, err := verify.CompilerVersion(bi.SolcLongVersion)
	if err != nil {
		return err
	}
	ctorArgs, err := art.ABI.Pack("", args...)
	if err != nil {
		return fmt.Errorf("failed to encode constructor args: %w", err)
	}
	return h.Verifier.Verify(ctx, verify.Request{
		Address:           deployed.Address,
		ContractName:      art.FullyQualifiedName(),
		CompilerVersion:   compiler,
		StandardJSONInput: bi.Input,
		ConstructorArgs:   ctorArgs,
	})
}

// printSummary is skipped on ephemeral local networks.
func (h *Helper) printSummary(id string, d *broadcaster.DeployedContract) {
	if h.Network == "hardhat" || strings.Contains(h.Network, "coverage") {
		return
	}
	_, _ = fmt.Fprintf(h.Out, "*** %s ***\n\n", id)
	_, _ = fmt.Fprintf(h.Out, "Network: %s\n", h.Network)
	_, _ = fmt.Fprintf(h.Out, "tx: %s\n", d.TxHash.Hex())
	_, _ = fmt.Fprintf(h.Out, "contract address: %s\n", d.Address.Hex())
	_, _ = fmt.Fprintf(h.Out, "deployer address: %s\n", d.Deployer.Hex())
	_, _ = fmt.Fprintf(h.Out, "gas price: %s\n", d.GasPrice)
	_, _ = fmt.Fprintf(h.Out, "gas used: %d\n", d.GasUsed)
	_, _ = fmt.Fprintf(h.Out, "\n******\n\n")
}
