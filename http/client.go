package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/logiris"
)

// Ensure ProxyClient implements logiris.ProxyClient at compile time.
var _ logiris.ProxyClient = (*ProxyClient)(nil)

// ProxyClient calls an article proxy such as Server.
type ProxyClient struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
}

// ProxyOption configures a ProxyClient.
type ProxyOption func(*ProxyClient)

// WithProxyTimeout sets the timeout for proxy requests. The proxy fetches
// upstream itself, so this should exceed the proxy's own fetch timeout.
func WithProxyTimeout(d time.Duration) ProxyOption {
	return func(c *ProxyClient) {
		c.timeout = d
	}
}

// NewProxyClient creates a client for the proxy at endpoint.
func NewProxyClient(endpoint string, opts ...ProxyOption) *ProxyClient {
	c := &ProxyClient{
		endpoint: endpoint,
		timeout:  2 * DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.client = &http.Client{Timeout: c.timeout}
	return c
}

// FetchArticle asks the proxy for the article at url. Transport failures,
// non-2xx statuses and malformed replies return EUPSTREAM errors that name
// url. A well-formed reply is returned as-is, even when it reports failure.
func (c *ProxyClient) FetchArticle(ctx context.Context, url, cookies string) (*logiris.ProxyResponse, error) {
	payload, err := json.Marshal(&logiris.ProxyRequest{URL: url, Cookies: cookies})
	if err != nil {
		return nil, logiris.Errorf(logiris.EINTERNAL, "encoding proxy request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, logiris.Errorf(logiris.EINVALID, "invalid proxy endpoint %q: %v", c.endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, logiris.Errorf(logiris.EUPSTREAM, "fetching %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, logiris.Errorf(logiris.EUPSTREAM, "fetching %s: reading proxy response: %v", url, err)
	}

	var out logiris.ProxyResponse
	jsonErr := json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if jsonErr == nil && out.Error != "" {
			return nil, logiris.Errorf(logiris.EUPSTREAM, "fetching %s: proxy status %d: %s", url, resp.StatusCode, out.Error)
		}
		return nil, logiris.Errorf(logiris.EUPSTREAM, "fetching %s: proxy status %d", url, resp.StatusCode)
	}
	if jsonErr != nil {
		return nil, logiris.Errorf(logiris.EUPSTREAM, "fetching %s: malformed proxy response: %v", url, jsonErr)
	}
	return &out, nil
}
