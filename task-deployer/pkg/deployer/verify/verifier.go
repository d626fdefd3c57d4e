// Package verify submits deployed contract sources to Etherscan-family explorers.
package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/time/rate"
)

// APIEndpoints are the explorer APIs of the networks verification is supported on.
var APIEndpoints = map[string]string{
	"main":    "https://api.etherscan.io/api",
	"ropsten": "https://api-ropsten.etherscan.io/api",
	"kovan":   "https://api-kovan.etherscan.io/api",
	"matic":   "https://api.polygonscan.com/api",
	"mumbai":  "https://api-testnet.polygonscan.com/api",
}

func SupportedNetworks() []string {
	out := make([]string, 0, len(APIEndpoints))
	for n := range APIEndpoints {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

var (
	ErrMissingAPIKey = errors.New("missing etherscan api key")
	ErrUnsupported   = errors.New("network not supported for verification")
)

// Errors that make further attempts pointless.
var fatalErrors = []string{
	"The address provided as argument contains a contract, but its bytecode",
	"Daily limit of 100 source code submissions reached",
	"has no bytecode. Is the contract deployed to this network",
	"The constructor for",
}

const (
	okError           = "Contract source code already verified"
	unableVerifyError = "Fail - Unable to verify"
)

const (
	DefaultAttempts     = 4
	DefaultRetryDelay   = 3 * time.Second
	DefaultInitialDelay = 30 * time.Second
	DefaultPollInterval = 5 * time.Second
	maxPolls            = 60
)

type Request struct {
	Address common.Address
	// ContractName is the fully qualified "<source>:<contract>" name.
	ContractName      string
	CompilerVersion   string
	StandardJSONInput []byte
	ConstructorArgs   []byte
}

type Verifier struct {
	network   string
	apiKey    string
	etherscan *EtherscanClient
	out       io.Writer
	l         log.Logger

	attempts     int
	retryDelay   time.Duration
	initialDelay time.Duration
	pollInterval time.Duration

	numVerified int
	numSkipped  int
	numFailed   int
}

// NewVerifier never fails; an unsupported network or missing key is reported
// by Verify so that deployments without verification are unaffected.
func NewVerifier(network, apiKey string, out io.Writer, l log.Logger) *Verifier {
	v := &Verifier{
		network:      network,
		apiKey:       apiKey,
		out:          out,
		l:            l,
		attempts:     DefaultAttempts,
		retryDelay:   DefaultRetryDelay,
		initialDelay: DefaultInitialDelay,
		pollInterval: DefaultPollInterval,
	}
	if url, ok := APIEndpoints[network]; ok {
		v.etherscan = NewEtherscanClient(apiKey, url, rate.NewLimiter(rate.Limit(4), 1))
	}
	return v
}

// CompilerVersion converts a solc long version into Etherscan's "v0.6.12+commit.27d51765" form.
func CompilerVersion(solcLongVersion string) (string, error) {
	ver, err := semver.NewVersion(solcLongVersion)
	if err != nil {
		return "", fmt.Errorf("invalid compiler version %q: %w", solcLongVersion, err)
	}
	if !strings.HasPrefix(ver.Metadata(), "commit.") {
		return "", fmt.Errorf("compiler version %q lacks commit metadata", solcLongVersion)
	}
	return "v" + ver.String(), nil
}

func (v *Verifier) check() error {
	if v.etherscan == nil {
		return fmt.Errorf("%w: %s, use one of: %s", ErrUnsupported, v.network, strings.Join(SupportedNetworks(), ","))
	}
	if v.apiKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (v *Verifier) Verify(ctx context.Context, req Request) error {
	if err := v.check(); err != nil {
		return err
	}

	verified, err := v.etherscan.IsVerified(ctx, req.Address)
	if err != nil {
		return fmt.Errorf("failed to check verification status: %w", err)
	}
	if verified {
		v.numSkipped++
		v.l.Info("contract already verified", "name", req.ContractName, "address", req.Address)
		return nil
	}

	_, _ = fmt.Fprintln(v.out, "[ETHERSCAN][WARNING] Delaying Etherscan verification due their API can not find newly deployed contracts")
	if err := sleep(ctx, v.initialDelay); err != nil {
		return err
	}

	for attempt := 1; attempt <= v.attempts; attempt++ {
		err := v.submitAndWait(ctx, req)
		if err == nil {
			v.numVerified++
			v.l.Info("contract verified", "name", req.ContractName, "address", req.Address)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msg := err.Error()
		if strings.Contains(msg, okError) {
			v.numSkipped++
			_, _ = fmt.Fprintln(v.out, "[ETHERSCAN][WARNING] Contract source code already verified")
			return nil
		}
		for _, fatal := range fatalErrors {
			if strings.Contains(msg, fatal) {
				v.numFailed++
				return fmt.Errorf("fatal verification error: %w", err)
			}
		}
		if strings.Contains(msg, unableVerifyError) {
			v.l.Warn("explorer was unable to verify, retrying", "name", req.ContractName, "err", err)
		}

		if attempt < v.attempts {
			_, _ = fmt.Fprintf(v.out, "[ETHERSCAN][ERROR] Retrying attempt #%d.\n", attempt+1)
			v.l.Debug("verification attempt failed", "attempt", attempt, "err", err)
			if err := sleep(ctx, v.retryDelay); err != nil {
				return err
			}
		} else {
			v.l.Error("verification attempt failed", "attempt", attempt, "err", err)
		}
	}
	v.numFailed++
	return errors.New("errors after all the retries, check the logs for more information")
}

func (v *Verifier) submitAndWait(ctx context.Context, req Request) error {
	guid, err := v.etherscan.Submit(ctx, SubmitRequest{
		Address:           req.Address,
		ContractName:      req.ContractName,
		CompilerVersion:   req.CompilerVersion,
		StandardJSONInput: req.StandardJSONInput,
		ConstructorArgs:   req.ConstructorArgs,
	})
	if err != nil {
		return err
	}
	v.l.Info("verification submitted", "guid", guid, "address", req.Address)

	for i := 0; i < maxPolls; i++ {
		if err := sleep(ctx, v.pollInterval); err != nil {
			return err
		}
		err := v.etherscan.CheckStatus(ctx, guid)
		if errors.Is(err, errPending) {
			continue
		}
		return err
	}
	return fmt.Errorf("verification %s still pending after %d polls", guid, maxPolls)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
