// Package rod implements logiris.Fetcher with a headless Chrome browser for
// article pages that only render their body client side.
package rod

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/logiris"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page load.
const DefaultFetchTimeout = 15 * time.Second

// DefaultMaxPages is the number of pages served before the browser is
// replaced. Chrome memory use grows with every page and never returns to
// the baseline.
const DefaultMaxPages = 75

// UserAgent replaces the headless marker in Chrome's default agent.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Ensure Fetcher implements logiris.Fetcher at compile time.
var _ logiris.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML with the reader's cookies installed in
// the page. Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	timeout  time.Duration
	maxPages int64

	mu        sync.Mutex
	browser   *rod.Browser
	launcher  *launcher.Launcher
	pageCount atomic.Int64
	closed    atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-page load timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxPages sets how many pages are served before the browser is recycled.
func WithMaxPages(n int64) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}

	if err := f.launch(); err != nil {
		return nil, err
	}
	return f, nil
}

// Fetch opens url in a new tab with cookies set for it and returns the
// rendered HTML once the page has loaded.
func (f *Fetcher) Fetch(ctx context.Context, url, cookies string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params, err := cookieParams(url, cookies)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.currentBrowser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("opening page: %w", err)
	}
	defer page.Close()
	f.pageCount.Add(1)

	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: UserAgent}); err != nil {
		return "", fmt.Errorf("setting user agent: %w", err)
	}
	if len(params) > 0 {
		if err := page.SetCookies(params); err != nil {
			return "", fmt.Errorf("setting cookies: %w", err)
		}
	}

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	return page.HTML()
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.shutdown()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.launcher == nil {
		return 0
	}
	return f.launcher.PID()
}

// cookieParams turns a Cookie header value into browser cookies scoped to
// url.
func cookieParams(url, header string) ([]*proto.NetworkCookieParam, error) {
	if header == "" {
		return nil, nil
	}
	parsed, err := http.ParseCookie(header)
	if err != nil {
		return nil, logiris.Errorf(logiris.EINVALID, "invalid cookies: %v", err)
	}
	params := make([]*proto.NetworkCookieParam, 0, len(parsed))
	for _, c := range parsed {
		params = append(params, &proto.NetworkCookieParam{
			Name:  c.Name,
			Value: c.Value,
			URL:   url,
		})
	}
	return params, nil
}

// currentBrowser returns the live browser, replacing it first if it has
// served maxPages pages.
func (f *Fetcher) currentBrowser() *rod.Browser {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pageCount.Load() >= f.maxPages {
		f.recycle()
	}
	return f.browser
}

func (f *Fetcher) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	f.browser = browser
	f.launcher = l
	return nil
}

// shutdown must be called with mu held.
func (f *Fetcher) shutdown() error {
	var err error
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher = nil
	}
	return err
}

// recycle starts a fresh browser and closes the old one. If the launch
// fails the old browser is kept. Must be called with mu held.
func (f *Fetcher) recycle() {
	oldBrowser, oldLauncher := f.browser, f.launcher
	if err := f.launch(); err != nil {
		f.browser, f.launcher = oldBrowser, oldLauncher
		return
	}
	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	f.pageCount.Store(0)
}
