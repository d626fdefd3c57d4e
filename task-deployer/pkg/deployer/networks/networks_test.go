package networks

import (
	"bytes"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		network    string
		incentives string
		oracle     string
	}{
		{"kovan", "0x0000000000000000000000000000000000000000", "0x8fb777d67e9945e2c01936e319057f9d41d559e6"},
		{"main", "0xd784927Ff2f95ba542BfC824c8a8a98F3495f6b5", "0xa50ba011c48153de246e5192c8f9258a2ba79ca9"},
		{"matic", "0x357D51124f59836DeD84c8a1730D72B749d8BC23", "0x0229F777B0fAb107F9591a41d5F02E4e98dB6f2d"},
		{"mumbai", "0xd41aE58e803Edf4304334acCE4DC4Ec34a63C644", "0xC365C653f7229894F93994CD0b30947Ab69Ff1D5"},
		{"tenderlyMain", "0xd784927Ff2f95ba542BfC824c8a8a98F3495f6b5", "0x3a463fFE9b69364B51113352a17839e36268e657"},
	}
	for _, tt := range tests {
		t.Run(tt.network, func(t *testing.T) {
			cfg, err := Resolve(tt.network)
			require.NoError(t, err)
			require.Equal(t, tt.incentives, cfg.IncentivesController)
			require.Equal(t, tt.oracle, cfg.PriceOracle)
		})
	}
}

func TestResolveUnsupported(t *testing.T) {
	for _, name := range []string{"ropsten", "", "Main", "MAIN", " main"} {
		t.Run(name, func(t *testing.T) {
			_, err := Resolve(name)
			var unsupported *UnsupportedNetworkError
			require.True(t, errors.As(err, &unsupported))
			require.Equal(t, name, unsupported.Network)
			require.Equal(t, SupportedNetworks(), unsupported.Supported)
			require.Contains(t, err.Error(), "please use one of: kovan,main,matic,mumbai,tenderlyMain")
		})
	}
}

func TestUnsupportedNetworkErrorMessage(t *testing.T) {
	_, err := Resolve("ropsten")
	require.EqualError(t, err, `Network "ropsten" not supported, please use one of: kovan,main,matic,mumbai,tenderlyMain`)
}

func TestSupportedNetworksIsACopy(t *testing.T) {
	names := SupportedNetworks()
	names[0] = "mutated"
	require.Equal(t, "kovan", SupportedNetworks()[0])
}

func TestAddressesWellFormed(t *testing.T) {
	re := regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	for _, name := range SupportedNetworks() {
		cfg, err := Resolve(name)
		require.NoError(t, err)
		require.Regexp(t, re, cfg.IncentivesController)
		require.Regexp(t, re, cfg.PriceOracle)
	}
}

func TestConstructorArgs(t *testing.T) {
	cfg, err := Resolve("main")
	require.NoError(t, err)
	args := cfg.ConstructorArgs()
	require.Len(t, args, 2)
	require.Equal(t, cfg.IncentivesControllerAddress(), args[0])
	require.Equal(t, cfg.PriceOracleAddress(), args[1])
}

func TestPrintTable(t *testing.T) {
	buf := new(bytes.Buffer)
	PrintTable(buf, func(network string) (uint64, bool) {
		if network == "main" {
			return 1, true
		}
		return 0, false
	})
	out := buf.String()
	for _, name := range SupportedNetworks() {
		require.Contains(t, out, name)
	}
	require.Contains(t, out, "0xa50ba011c48153de246e5192c8f9258a2ba79ca9")
	require.Contains(t, out, "AaveOracle")
}
