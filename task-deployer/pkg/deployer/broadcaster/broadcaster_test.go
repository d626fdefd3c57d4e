package broadcaster

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"github.com/mantlenetworkio/deploy-tasks/op-service/testlog"
	"github.com/mantlenetworkio/deploy-tasks/op-service/testutils"
	"github.com/mantlenetworkio/deploy-tasks/task-deployer/pkg/deployer/artifacts"
)

func loadArtifact(t *testing.T) *artifacts.Artifact {
	afs := &artifacts.ArtifactsFS{FS: os.DirFS("../artifacts/testdata/artifacts")}
	art, err := afs.FindArtifact("UiPoolDataProvider")
	require.NoError(t, err)
	return art
}

func TestKeyedDeployer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := testutils.NewSimulatedEthClient(t)
	stop := client.AutoCommit(ctx, 50*time.Millisecond)
	defer stop()

	d, err := NewKeyedDeployer(client, client.PrivateKey(), testutils.SimulatedChainID, testlog.Logger(t, log.LevelDebug))
	require.NoError(t, err)
	require.Equal(t, client.Address(), d.From())

	args := []any{
		common.HexToAddress("0xd784927Ff2f95ba542BfC824c8a8a98F3495f6b5"),
		common.HexToAddress("0xa50ba011c48153de246e5192c8f9258a2ba79ca9"),
	}
	deployed, err := d.Deploy(ctx, loadArtifact(t), args...)
	require.NoError(t, err)
	require.NotEqual(t, common.Address{}, deployed.Address)
	require.Equal(t, client.Address(), deployed.Deployer)
	require.NotZero(t, deployed.GasUsed)
	require.NotNil(t, deployed.GasPrice)
	require.NotZero(t, deployed.BlockNumber)

	code, err := client.CodeAt(ctx, deployed.Address, nil)
	require.NoError(t, err)
	require.Equal(t, common.FromHex("0x602a60005260206000f3"), code)
}

func TestKeyedDeployerWrongArgs(t *testing.T) {
	client := testutils.NewSimulatedEthClient(t)
	d, err := NewKeyedDeployer(client, client.PrivateKey(), testutils.SimulatedChainID, testlog.Logger(t, log.LevelDebug))
	require.NoError(t, err)

	_, err = d.Deploy(context.Background(), loadArtifact(t), common.Address{})
	require.ErrorContains(t, err, "creation transaction")
}

func TestKeyedDeployerLinking(t *testing.T) {
	client := testutils.NewSimulatedEthClient(t)
	d, err := NewKeyedDeployer(client, client.PrivateKey(), testutils.SimulatedChainID, testlog.Logger(t, log.LevelDebug))
	require.NoError(t, err)

	art := loadArtifact(t)
	art.Bytecode = "0x6080__$0123$__"
	_, err = d.Deploy(context.Background(), art)
	require.ErrorIs(t, err, artifacts.ErrLinkingUnsupported)
}
