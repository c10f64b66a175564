package logiris

import "context"

// ProxyRequest is the body accepted by the article proxy.
type ProxyRequest struct {
	URL     string `json:"url"`
	Cookies string `json:"cookies,omitempty"`
}

// ProxyResponse is the body returned by the article proxy. A failed fetch
// sets Error and leaves Success false; HTML then carries the first bytes of
// the upstream response for diagnosis.
type ProxyResponse struct {
	Success bool   `json:"success,omitempty"`
	Title   string `json:"title,omitempty"`
	Body    string `json:"body,omitempty"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// ProxyClient requests article extraction from a remote proxy.
type ProxyClient interface {
	// FetchArticle asks the proxy to fetch url using cookies.
	// Transport failures, non-2xx statuses and malformed responses return
	// an EUPSTREAM error mentioning url.
	FetchArticle(ctx context.Context, url, cookies string) (*ProxyResponse, error)
}
