package mock

import (
	"context"

	"github.com/fwojciec/logiris"
)

var _ logiris.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of logiris.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url, cookies string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url, cookies string) (string, error) {
	return f.FetchFn(ctx, url, cookies)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ logiris.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of logiris.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
