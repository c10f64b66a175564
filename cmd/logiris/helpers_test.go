package main_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/fwojciec/logiris"
	main "github.com/fwojciec/logiris/cmd/logiris"
	"github.com/fwojciec/logiris/extract"
	"github.com/stretchr/testify/require"
)

// newDeps returns dependencies with the default pipeline and HTML output.
func newDeps(t *testing.T) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	pipeline, err := extract.NewPipeline(logiris.DefaultRules())
	require.NoError(t, err)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:      context.Background(),
		Stdout:   stdout,
		Stderr:   stderr,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Rules:    logiris.DefaultRules(),
		Pipeline: pipeline,
		Render:   func(html string) (string, error) { return html, nil },
	}, stdout, stderr
}
