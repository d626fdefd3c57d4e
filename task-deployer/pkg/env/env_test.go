package env

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mantlenetworkio/deploy-tasks/op-service/testutils"
)

func writeNetworksFile(t *testing.T, content string) string {
	return testutils.WriteFile(t, t.TempDir(), "networks.toml", []byte(content))
}

func TestNewDefaults(t *testing.T) {
	tests := map[string]uint64{
		"kovan":        42,
		"ropsten":      3,
		"main":         1,
		"coverage":     1337,
		"hardhat":      31337,
		"tenderlyMain": 3030,
		"matic":        137,
		"mumbai":       80001,
	}
	for network, id := range tests {
		e, err := New(Config{Network: network})
		require.NoError(t, err)
		require.Equal(t, id, e.ChainID, network)
		require.NoError(t, e.CheckChainID())
	}
}

func TestMissingChainID(t *testing.T) {
	e, err := New(Config{Network: "localnet"})
	require.NoError(t, err)
	require.ErrorIs(t, e.CheckChainID(), ErrInvalidChainID)
	require.EqualError(t, e.CheckChainID(), "INVALID_CHAIN_ID")
}

func TestNetworksFileOverrides(t *testing.T) {
	path := writeNetworksFile(t, `
[networks.main]
rpc-url = "https://mainnet.example.com"

[networks.localnet]
rpc-url = "http://127.0.0.1:8545"
chain-id = 900

[networks.tenderlyMain]
rpc-url = "https://rpc.tenderly.co/fork/abc-123"
tenderly-fork-id = "abc-123"
`)

	e, err := New(Config{Network: "main", NetworksFile: path})
	require.NoError(t, err)
	require.Equal(t, uint64(1), e.ChainID)
	require.Equal(t, "https://mainnet.example.com", e.RPCURL)

	e, err = New(Config{Network: "localnet", NetworksFile: path})
	require.NoError(t, err)
	require.Equal(t, uint64(900), e.ChainID)

	e, err = New(Config{Network: "tenderlyMain", NetworksFile: path})
	require.NoError(t, err)
	require.Equal(t, "abc-123", e.TenderlyForkID)
	require.True(t, e.UsingTenderly())

	e, err = New(Config{Network: "localnet", NetworksFile: path, ChainID: 901, RPCURL: "ws://localhost:8546"})
	require.NoError(t, err)
	require.Equal(t, uint64(901), e.ChainID)
	require.Equal(t, "ws://localhost:8546", e.RPCURL)
}

func TestNetworksFileUnknownKey(t *testing.T) {
	path := writeNetworksFile(t, `
[networks.main]
rpc = "https://mainnet.example.com"
`)
	_, err := New(Config{Network: "main", NetworksFile: path})
	require.ErrorContains(t, err, "unknown keys")
}

func TestNetworksFileBadURL(t *testing.T) {
	path := writeNetworksFile(t, `
[networks.main]
rpc-url = "ftp://mainnet.example.com"

[networks.kovan]
rpc-url = "gopher://kovan.example.com"
`)
	_, err := LoadNetworksFile(path)
	require.ErrorContains(t, err, "network main")
	require.ErrorContains(t, err, "network kovan")
}

func TestConfigCheck(t *testing.T) {
	err := Config{RPCURL: "nope://x", TenderlyForkID: "a/b"}.Check()
	require.ErrorContains(t, err, "network must be specified")
	require.ErrorContains(t, err, "unsupported scheme")
	require.ErrorContains(t, err, "invalid tenderly fork id")

	require.NoError(t, Config{Network: "main", RPCURL: "https://x"}.Check())
}

func TestUsingTenderly(t *testing.T) {
	e, err := New(Config{Network: "main"})
	require.NoError(t, err)
	require.False(t, e.UsingTenderly())

	e, err = New(Config{Network: "main", Tenderly: true})
	require.NoError(t, err)
	require.True(t, e.UsingTenderly())

	e, err = New(Config{Network: "tenderlyMain"})
	require.NoError(t, err)
	require.True(t, e.UsingTenderly())
}

func TestTenderlyFromEnv(t *testing.T) {
	t.Setenv("TENDERLY", "true")
	require.True(t, TenderlyFromEnv())
	t.Setenv("TENDERLY", "false")
	require.False(t, TenderlyFromEnv())
}

func TestKnownNetworksSorted(t *testing.T) {
	require.Equal(t, []string{"coverage", "hardhat", "kovan", "main", "matic", "mumbai", "ropsten", "tenderlyMain"}, KnownNetworks())
}
