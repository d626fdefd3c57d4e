// Package env builds the runtime environment a task executes against: the
// active network, its chain id and RPC endpoint, and whether it is a Tenderly fork.
package env

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
)

// ErrInvalidChainID is returned when the active network has no chain id.
var ErrInvalidChainID = errors.New("INVALID_CHAIN_ID")

// defaultChainIDs are the chain ids of the networks known without a networks file.
var defaultChainIDs = map[string]uint64{
	"kovan":        42,
	"ropsten":      3,
	"main":         1,
	"coverage":     1337,
	"hardhat":      31337,
	"tenderlyMain": 3030,
	"matic":        137,
	"mumbai":       80001,
}

func DefaultChainID(network string) (uint64, bool) {
	id, ok := defaultChainIDs[network]
	return id, ok
}

// KnownNetworks returns the names of the networks with a default chain id, sorted.
func KnownNetworks() []string {
	out := make([]string, 0, len(defaultChainIDs))
	for name := range defaultChainIDs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type NetworkConfig struct {
	RPCURL         string `toml:"rpc-url"`
	ChainID        uint64 `toml:"chain-id"`
	TenderlyForkID string `toml:"tenderly-fork-id"`
}

type NetworksFile struct {
	Networks map[string]NetworkConfig `toml:"networks"`
}

func (f *NetworksFile) Check() error {
	var result *multierror.Error
	for name, n := range f.Networks {
		if n.RPCURL == "" {
			continue
		}
		if err := checkRPCURL(n.RPCURL); err != nil {
			result = multierror.Append(result, fmt.Errorf("network %s: %w", name, err))
		}
	}
	return result.ErrorOrNil()
}

// LoadNetworksFile decodes a TOML networks file. Unknown keys are rejected.
func LoadNetworksFile(path string) (*NetworksFile, error) {
	var f NetworksFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode networks file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in networks file %s: %s", path, strings.Join(keys, ", "))
	}
	if err := f.Check(); err != nil {
		return nil, fmt.Errorf("invalid networks file %s: %w", path, err)
	}
	return &f, nil
}

// Config holds the raw user input the Environment is built from. Zero values
// mean "not set"; set values override the networks file, which overrides defaults.
type Config struct {
	Network        string
	NetworksFile   string
	RPCURL         string
	ChainID        uint64
	TenderlyForkID string
	// Tenderly forces simulation mode regardless of the network name.
	Tenderly bool
}

func (c Config) Check() error {
	var result *multierror.Error
	if c.Network == "" {
		result = multierror.Append(result, errors.New("network must be specified"))
	}
	if c.RPCURL != "" {
		if err := checkRPCURL(c.RPCURL); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if c.TenderlyForkID != "" && strings.ContainsAny(c.TenderlyForkID, "/ ") {
		result = multierror.Append(result, fmt.Errorf("invalid tenderly fork id %q", c.TenderlyForkID))
	}
	return result.ErrorOrNil()
}

func checkRPCURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid rpc url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
		return nil
	default:
		return fmt.Errorf("invalid rpc url %q: unsupported scheme %q", raw, u.Scheme)
	}
}

// TenderlyFromEnv reports whether TENDERLY=true is set in the process environment.
func TenderlyFromEnv() bool {
	return os.Getenv("TENDERLY") == "true"
}

type Environment struct {
	Network        string
	ChainID        uint64
	RPCURL         string
	TenderlyForkID string

	forceTenderly bool
}

// New resolves cfg into an Environment. A missing chain id is not an error
// here; tasks call CheckChainID before doing any work.
func New(cfg Config) (*Environment, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid environment config: %w", err)
	}

	e := &Environment{
		Network:       cfg.Network,
		forceTenderly: cfg.Tenderly,
	}
	if id, ok := DefaultChainID(cfg.Network); ok {
		e.ChainID = id
	}

	if cfg.NetworksFile != "" {
		f, err := LoadNetworksFile(cfg.NetworksFile)
		if err != nil {
			return nil, err
		}
		if n, ok := f.Networks[cfg.Network]; ok {
			e.apply(n)
		}
	}

	e.apply(NetworkConfig{
		RPCURL:         cfg.RPCURL,
		ChainID:        cfg.ChainID,
		TenderlyForkID: cfg.TenderlyForkID,
	})
	return e, nil
}

func (e *Environment) apply(n NetworkConfig) {
	if n.RPCURL != "" {
		e.RPCURL = n.RPCURL
	}
	if n.ChainID != 0 {
		e.ChainID = n.ChainID
	}
	if n.TenderlyForkID != "" {
		e.TenderlyForkID = n.TenderlyForkID
	}
}

func (e *Environment) CheckChainID() error {
	if e.ChainID == 0 {
		return ErrInvalidChainID
	}
	return nil
}

// UsingTenderly reports whether the environment is a Tenderly fork simulation.
func (e *Environment) UsingTenderly() bool {
	return e.forceTenderly || strings.Contains(e.Network, "tenderly")
}
