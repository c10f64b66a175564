package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/logiris"
)

// Ensure LoggingProxyClient implements logiris.ProxyClient.
var _ logiris.ProxyClient = (*LoggingProxyClient)(nil)

// LoggingProxyClient wraps a ProxyClient with logging.
type LoggingProxyClient struct {
	next   logiris.ProxyClient
	logger *slog.Logger
}

// NewLoggingProxyClient creates a new LoggingProxyClient.
func NewLoggingProxyClient(next logiris.ProxyClient, logger *slog.Logger) *LoggingProxyClient {
	return &LoggingProxyClient{next: next, logger: logger}
}

// FetchArticle delegates to the wrapped client and logs the operation.
func (c *LoggingProxyClient) FetchArticle(ctx context.Context, url, cookies string) (resp *logiris.ProxyResponse, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin), "err", err}
		if resp != nil {
			attrs = append(attrs, "success", resp.Success, "bytes", len(resp.Body))
			if resp.Error != "" {
				attrs = append(attrs, "proxy_error", resp.Error)
			}
		}
		c.logger.Info("proxy fetch", attrs...)
	}(time.Now())
	return c.next.FetchArticle(ctx, url, cookies)
}
