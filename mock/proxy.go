package mock

import (
	"context"

	"github.com/fwojciec/logiris"
)

var _ logiris.ProxyClient = (*ProxyClient)(nil)

// ProxyClient is a mock implementation of logiris.ProxyClient.
type ProxyClient struct {
	FetchArticleFn func(ctx context.Context, url, cookies string) (*logiris.ProxyResponse, error)
}

func (c *ProxyClient) FetchArticle(ctx context.Context, url, cookies string) (*logiris.ProxyResponse, error) {
	return c.FetchArticleFn(ctx, url, cookies)
}
