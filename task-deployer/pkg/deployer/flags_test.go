package deployer

import (
	"flag"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestParsePrivateKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hex := common.Bytes2Hex(crypto.FromECDSA(key))

	for _, in := range []string{"0x" + hex, hex, " 0x" + hex + "\n"} {
		got, err := ParsePrivateKey(in)
		require.NoError(t, err)
		require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(got.PublicKey))
	}

	_, err = ParsePrivateKey("")
	require.ErrorContains(t, err, "--private-key")

	_, err = ParsePrivateKey("0xzz")
	require.ErrorContains(t, err, "invalid private key")
}

func TestReadEnvConfig(t *testing.T) {
	t.Setenv("TENDERLY", "true")
	t.Setenv("TASK_DEPLOYER_CHAIN_ID", "3030")

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range GlobalFlags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse([]string{"--network", "tenderlyMain", "--rpc-url", "https://rpc.tenderly.co/fork/abc"}))
	cliCtx := cli.NewContext(cli.NewApp(), set, nil)

	cfg := ReadEnvConfig(cliCtx)
	require.Equal(t, "tenderlyMain", cfg.Network)
	require.Equal(t, "https://rpc.tenderly.co/fork/abc", cfg.RPCURL)
	require.Equal(t, uint64(3030), cfg.ChainID)
	require.True(t, cfg.Tenderly)
}
