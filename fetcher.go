package logiris

import "context"

// Fetcher retrieves raw HTML from URLs on behalf of a signed-in reader.
type Fetcher interface {
	// Fetch requests the URL with the given Cookie header value and returns
	// the response body. An empty cookies string sends no cookies.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string, cookies string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
