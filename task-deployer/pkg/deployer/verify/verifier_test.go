package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/mantlenetworkio/deploy-tasks/op-service/testlog"
)

const testAPIKey = "test-api-key"

type fakeEtherscan struct {
	t  *testing.T
	mu sync.Mutex

	verified    bool
	submitErrs  []string
	statuses    []EtherscanGenericResp
	submissions []map[string]string
}

func (f *fakeEtherscan) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	require.NoError(f.t, r.ParseForm())
	require.Equal(f.t, testAPIKey, r.Form.Get("apikey"))

	var resp EtherscanGenericResp
	switch r.Form.Get("action") {
	case "getabi":
		if f.verified {
			resp = EtherscanGenericResp{Status: "1", Message: "OK", Result: "[]"}
		} else {
			resp = EtherscanGenericResp{Status: "0", Message: "NOTOK", Result: "Contract source code not verified"}
		}
	case "verifysourcecode":
		form := make(map[string]string)
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		f.submissions = append(f.submissions, form)
		if len(f.submitErrs) > 0 {
			msg := f.submitErrs[0]
			f.submitErrs = f.submitErrs[1:]
			resp = EtherscanGenericResp{Status: "0", Message: "NOTOK", Result: msg}
		} else {
			resp = EtherscanGenericResp{Status: "1", Message: "OK", Result: "guid-1"}
		}
	case "checkverifystatus":
		require.Equal(f.t, "guid-1", r.Form.Get("guid"))
		if len(f.statuses) > 0 {
			resp = f.statuses[0]
			f.statuses = f.statuses[1:]
		} else {
			resp = EtherscanGenericResp{Status: "1", Message: "OK", Result: "Pass - Verified"}
		}
	default:
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(f.t, json.NewEncoder(w).Encode(resp))
}

func newTestVerifier(t *testing.T, fake *fakeEtherscan) (*Verifier, *bytes.Buffer) {
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	out := new(bytes.Buffer)
	v := NewVerifier("main", testAPIKey, out, testlog.Logger(t, log.LevelDebug))
	v.etherscan = NewEtherscanClient(testAPIKey, srv.URL, rate.NewLimiter(rate.Inf, 1))
	v.initialDelay = 0
	v.retryDelay = 0
	v.pollInterval = 0
	return v, out
}

func testRequest() Request {
	return Request{
		Address:           common.HexToAddress("0x1234"),
		ContractName:      "contracts/misc/UiPoolDataProvider.sol:UiPoolDataProvider",
		CompilerVersion:   "v0.6.12+commit.27d51765",
		StandardJSONInput: []byte(`{"language":"Solidity"}`),
		ConstructorArgs:   common.FromHex("0xabcd"),
	}
}

func TestVerifySkipsVerified(t *testing.T) {
	fake := &fakeEtherscan{t: t, verified: true}
	v, out := newTestVerifier(t, fake)

	require.NoError(t, v.Verify(context.Background(), testRequest()))
	require.Equal(t, 1, v.numSkipped)
	require.Equal(t, 0, v.numVerified)
	require.Empty(t, fake.submissions)
	require.Empty(t, out.String())
}

func TestVerifySubmits(t *testing.T) {
	fake := &fakeEtherscan{
		t:        t,
		statuses: []EtherscanGenericResp{{Status: "0", Message: "NOTOK", Result: "Pending in queue"}},
	}
	v, out := newTestVerifier(t, fake)

	require.NoError(t, v.Verify(context.Background(), testRequest()))
	require.Equal(t, 1, v.numVerified)
	require.Contains(t, out.String(), "[ETHERSCAN][WARNING] Delaying Etherscan verification due their API can not find newly deployed contracts")

	require.Len(t, fake.submissions, 1)
	sub := fake.submissions[0]
	require.Equal(t, "solidity-standard-json-input", sub["codeformat"])
	require.Equal(t, "contracts/misc/UiPoolDataProvider.sol:UiPoolDataProvider", sub["contractname"])
	require.Equal(t, "v0.6.12+commit.27d51765", sub["compilerversion"])
	require.Equal(t, "abcd", sub["constructorArguements"])
	require.Equal(t, `{"language":"Solidity"}`, sub["sourceCode"])
	require.Equal(t, common.HexToAddress("0x1234").Hex(), sub["contractaddress"])
}

func TestVerifyRetries(t *testing.T) {
	fake := &fakeEtherscan{
		t:          t,
		submitErrs: []string{"Unable to locate ContractCode at 0x1234", "Fail - Unable to verify"},
	}
	v, out := newTestVerifier(t, fake)

	require.NoError(t, v.Verify(context.Background(), testRequest()))
	require.Len(t, fake.submissions, 3)
	require.Equal(t, 1, v.numVerified)
	require.Contains(t, out.String(), "Retrying attempt #2.")
	require.Contains(t, out.String(), "Retrying attempt #3.")
}

func TestVerifyAlreadyVerifiedIsOK(t *testing.T) {
	fake := &fakeEtherscan{t: t, submitErrs: []string{"Contract source code already verified"}}
	v, _ := newTestVerifier(t, fake)

	require.NoError(t, v.Verify(context.Background(), testRequest()))
	require.Equal(t, 1, v.numSkipped)
	require.Len(t, fake.submissions, 1)
}

func TestVerifyFatal(t *testing.T) {
	for _, msg := range fatalErrors {
		t.Run(msg, func(t *testing.T) {
			fake := &fakeEtherscan{t: t, submitErrs: []string{msg}}
			v, _ := newTestVerifier(t, fake)

			err := v.Verify(context.Background(), testRequest())
			require.ErrorContains(t, err, msg)
			require.Len(t, fake.submissions, 1)
			require.Equal(t, 1, v.numFailed)
		})
	}
}

func TestVerifyGivesUp(t *testing.T) {
	fake := &fakeEtherscan{t: t, submitErrs: []string{"a", "b", "c", "d", "e"}}
	v, _ := newTestVerifier(t, fake)

	err := v.Verify(context.Background(), testRequest())
	require.ErrorContains(t, err, "after all the retries")
	require.Len(t, fake.submissions, DefaultAttempts)
	require.Equal(t, 1, v.numFailed)
}

func TestVerifyStatusFailure(t *testing.T) {
	fail := EtherscanGenericResp{Status: "0", Message: "NOTOK", Result: "Fail - Unable to verify. Compiled contract deployment bytecode does NOT match"}
	fake := &fakeEtherscan{t: t, statuses: []EtherscanGenericResp{fail, fail, fail, fail}}
	v, _ := newTestVerifier(t, fake)

	err := v.Verify(context.Background(), testRequest())
	require.Error(t, err)
	require.Len(t, fake.submissions, DefaultAttempts)
}

func TestVerifyUnsupportedNetwork(t *testing.T) {
	v := NewVerifier("tenderlyMain", testAPIKey, new(bytes.Buffer), testlog.Logger(t, log.LevelDebug))
	err := v.Verify(context.Background(), testRequest())
	require.ErrorIs(t, err, ErrUnsupported)
	require.ErrorContains(t, err, "kovan,main,matic,mumbai,ropsten")
}

func TestVerifyMissingKey(t *testing.T) {
	v := NewVerifier("main", "", new(bytes.Buffer), testlog.Logger(t, log.LevelDebug))
	require.ErrorIs(t, v.Verify(context.Background(), testRequest()), ErrMissingAPIKey)
}

func TestVerifyCancelled(t *testing.T) {
	fake := &fakeEtherscan{t: t}
	v, _ := newTestVerifier(t, fake)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, v.Verify(ctx, testRequest()))
	require.Empty(t, fake.submissions)
}

func TestCompilerVersion(t *testing.T) {
	v, err := CompilerVersion("0.6.12+commit.27d51765")
	require.NoError(t, err)
	require.Equal(t, "v0.6.12+commit.27d51765", v)

	_, err = CompilerVersion("0.6.12")
	require.ErrorContains(t, err, "commit metadata")

	_, err = CompilerVersion("latest")
	require.Error(t, err)
}
