// Package tenderly talks to Tenderly fork RPC endpoints and keeps track of the
// simulation head the fork reports.
package tenderly

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
)

// HeadHeader is the response header carrying the id of the latest fork simulation.
const HeadHeader = "Head"

type headRecorder struct {
	next http.RoundTripper

	mu   sync.RWMutex
	head string
}

func (h *headRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := h.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if head := resp.Header.Get(HeadHeader); head != "" {
		h.mu.Lock()
		h.head = head
		h.mu.Unlock()
	}
	return resp, nil
}

func (h *headRecorder) get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.head
}

// Client is an Ethereum client bound to a Tenderly fork.
type Client struct {
	*ethclient.Client

	heads  *headRecorder
	forkID string
}

// Dial connects to the fork at rpcURL. When forkID is empty it is derived from
// the rpc.tenderly.co/fork/<id> URL form.
func Dial(ctx context.Context, rpcURL, forkID string, lgr log.Logger) (*Client, error) {
	if forkID == "" {
		forkID = ForkIDFromURL(rpcURL)
	}
	heads := &headRecorder{next: http.DefaultTransport}
	rc, err := rpc.DialOptions(ctx, rpcURL, rpc.WithHTTPClient(&http.Client{Transport: heads}))
	if err != nil {
		return nil, fmt.Errorf("failed to dial tenderly fork %s: %w", rpcURL, err)
	}
	lgr.Debug("connected to tenderly fork", "fork", forkID)
	return &Client{
		Client: ethclient.NewClient(rc),
		heads:  heads,
		forkID: forkID,
	}, nil
}

// Head returns the latest simulation id reported by the fork, empty before any request.
func (c *Client) Head() string {
	return c.heads.get()
}

func (c *Client) Fork() string {
	return c.forkID
}

// ForkIDFromURL extracts the fork id from a https://rpc.tenderly.co/fork/<id> URL.
func ForkIDFromURL(rpcURL string) string {
	u, err := url.Parse(rpcURL)
	if err != nil || !strings.HasSuffix(u.Host, "tenderly.co") {
		return ""
	}
	dir, id := path.Split(strings.TrimSuffix(u.Path, "/"))
	if path.Base(strings.TrimSuffix(dir, "/")) != "fork" {
		return ""
	}
	return id
}
