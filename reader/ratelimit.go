package reader

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/fwojciec/logiris"
	"golang.org/x/time/rate"
)

var _ logiris.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter throttles article fetches per host so that reading a batch
// of links from one newsletter does not hammer a single site. Hosts are
// compared case-insensitively and without port.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter returns a DomainLimiter allowing rps fetches per second
// to each host, with a burst of 1.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until a fetch from host is allowed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	key := hostKey(host)

	d.mu.Lock()
	limiter, ok := d.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[key] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

func hostKey(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host)
}
