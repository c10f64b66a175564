package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/logiris/extract"
	lohttp "github.com/fwojciec/logiris/http"
)

// shutdownTimeout bounds how long in-flight requests may finish on exit.
const shutdownTimeout = 10 * time.Second

// Run executes the serve command. It stops when the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	return serve(deps, ln)
}

func serve(deps *Dependencies, ln net.Listener) error {
	srv := &http.Server{
		Handler: &lohttp.Server{
			Fetcher:   deps.Fetcher,
			Extractor: extract.ProxyExtractor{Pipeline: deps.Pipeline},
			Limiter:   deps.Limiter,
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	deps.Logger.Info("proxy listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-deps.Ctx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	deps.Logger.Info("proxy stopped")
	return nil
}
