package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// EtherscanGenericResp is the envelope every Etherscan-family endpoint replies with.
type EtherscanGenericResp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

func (r *EtherscanGenericResp) OK() bool {
	return r.Status == "1"
}

type EtherscanClient struct {
	apiKey string
	url    string
	rl     *rate.Limiter
	client *resty.Client
}

func NewEtherscanClient(apiKey, url string, rl *rate.Limiter) *EtherscanClient {
	return &EtherscanClient{
		apiKey: apiKey,
		url:    url,
		rl:     rl,
		client: resty.New(),
	}
}

var errPending = errors.New("verification pending")

type SubmitRequest struct {
	Address           common.Address
	ContractName      string
	CompilerVersion   string
	StandardJSONInput []byte
	ConstructorArgs   []byte
}

func (c *EtherscanClient) do(ctx context.Context, r *resty.Request, method string) (*EtherscanGenericResp, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	var out EtherscanGenericResp
	resp, err := r.SetContext(ctx).
		SetResult(&out).
		ForceContentType("application/json").
		Execute(method, c.url)
	if err != nil {
		return nil, fmt.Errorf("etherscan request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("etherscan returned status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return &out, nil
}

// IsVerified reports whether the contract at addr already has verified source.
func (c *EtherscanClient) IsVerified(ctx context.Context, addr common.Address) (bool, error) {
	resp, err := c.do(ctx, c.client.R().SetQueryParams(map[string]string{
		"module":  "contract",
		"action":  "getabi",
		"address": addr.Hex(),
		"apikey":  c.apiKey,
	}), resty.MethodGet)
	if err != nil {
		return false, err
	}
	return resp.OK(), nil
}

// Submit uploads the source for verification and returns the Etherscan job guid.
func (c *EtherscanClient) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	resp, err := c.do(ctx, c.client.R().SetFormData(map[string]string{
		"apikey":          c.apiKey,
		"module":          "contract",
		"action":          "verifysourcecode",
		"contractaddress": req.Address.Hex(),
		"sourceCode":      string(req.StandardJSONInput),
		"codeformat":      "solidity-standard-json-input",
		"contractname":    req.ContractName,
		"compilerversion": req.CompilerVersion,
		// sic, Etherscan spells it this way
		"constructorArguements": common.Bytes2Hex(req.ConstructorArgs),
	}), resty.MethodPost)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", errors.New(resp.Result)
	}
	return resp.Result, nil
}

// CheckStatus returns nil once the job passed, errPending while it is queued,
// and the Etherscan result text as an error on failure.
func (c *EtherscanClient) CheckStatus(ctx context.Context, guid string) error {
	resp, err := c.do(ctx, c.client.R().SetQueryParams(map[string]string{
		"apikey": c.apiKey,
		"module": "contract",
		"action": "checkverifystatus",
		"guid":   guid,
	}), resty.MethodGet)
	if err != nil {
		return err
	}
	switch {
	case resp.OK():
		return nil
	case strings.Contains(resp.Result, "Pending"):
		return errPending
	case strings.Contains(resp.Result, "Already Verified"):
		return nil
	default:
		return errors.New(resp.Result)
	}
}
