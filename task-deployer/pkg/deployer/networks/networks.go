// Package networks holds the per-network addresses the UiPoolDataProvider is
// constructed with.
package networks

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/olekukonko/tablewriter"
)

// NetworkAddressConfig is the pair of addresses passed to the UiPoolDataProvider
// constructor. Addresses are kept as their literal hex strings.
type NetworkAddressConfig struct {
	IncentivesController string
	PriceOracle          string
}

func (c NetworkAddressConfig) IncentivesControllerAddress() common.Address {
	return common.HexToAddress(c.IncentivesController)
}

func (c NetworkAddressConfig) PriceOracleAddress() common.Address {
	return common.HexToAddress(c.PriceOracle)
}

// ConstructorArgs returns the arguments in constructor order.
func (c NetworkAddressConfig) ConstructorArgs() []any {
	return []any{c.IncentivesControllerAddress(), c.PriceOracleAddress()}
}

type entry struct {
	name string
	cfg  NetworkAddressConfig
}

// table is ordered; the order is the one used in diagnostics.
var table = [...]entry{
	{"kovan", NetworkAddressConfig{
		IncentivesController: "0x0000000000000000000000000000000000000000",
		PriceOracle:          "0x8fb777d67e9945e2c01936e319057f9d41d559e6",
	}},
	{"main", NetworkAddressConfig{
		IncentivesController: "0xd784927Ff2f95ba542BfC824c8a8a98F3495f6b5",
		PriceOracle:          "0xa50ba011c48153de246e5192c8f9258a2ba79ca9",
	}},
	{"matic", NetworkAddressConfig{
		IncentivesController: "0x357D51124f59836DeD84c8a1730D72B749d8BC23",
		PriceOracle:          "0x0229F777B0fAb107F9591a41d5F02E4e98dB6f2d",
	}},
	{"mumbai", NetworkAddressConfig{
		IncentivesController: "0xd41aE58e803Edf4304334acCE4DC4Ec34a63C644",
		PriceOracle:          "0xC365C653f7229894F93994CD0b30947Ab69Ff1D5",
	}},
	{"tenderlyMain", NetworkAddressConfig{
		IncentivesController: "0xd784927Ff2f95ba542BfC824c8a8a98F3495f6b5",
		PriceOracle:          "0x3a463fFE9b69364B51113352a17839e36268e657",
	}},
}

// UnsupportedNetworkError is returned by Resolve for networks missing from the table.
type UnsupportedNetworkError struct {
	Network   string
	Supported []string
}

func (e *UnsupportedNetworkError) Error() string {
	return fmt.Sprintf("Network %q not supported, please use one of: %s", e.Network, strings.Join(e.Supported, ","))
}

// SupportedNetworks returns the supported network names in table order.
func SupportedNetworks() []string {
	out := make([]string, len(table))
	for i, e := range table {
		out[i] = e.name
	}
	return out
}

// Resolve looks up network by exact, case-sensitive name.
func Resolve(network string) (NetworkAddressConfig, error) {
	for _, e := range table {
		if e.name == network {
			return e.cfg, nil
		}
	}
	return NetworkAddressConfig{}, &UnsupportedNetworkError{
		Network:   network,
		Supported: SupportedNetworks(),
	}
}

// PrintTable renders the address table. chainID may be nil; unknown ids are left blank.
func PrintTable(w io.Writer, chainID func(network string) (uint64, bool)) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Network", "Chain ID", "IncentivesController", "AaveOracle"})
	tw.SetAutoFormatHeaders(false)
	for _, e := range table {
		id := ""
		if chainID != nil {
			if v, ok := chainID(e.name); ok {
				id = fmt.Sprintf("%d", v)
			}
		}
		tw.Append([]string{e.name, id, e.cfg.IncentivesController, e.cfg.PriceOracle})
	}
	tw.Render()
}
