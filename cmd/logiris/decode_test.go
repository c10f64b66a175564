package main_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/logiris"
	main "github.com/fwojciec/logiris/cmd/logiris"
	"github.com/fwojciec/logiris/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newsletterHTML = `<div><p>Stocks rose.</p>` +
	`<a href="https://www.bloomberg.com/news/articles/a">Read</a>` +
	`<a href="/news/articles/b#top">More</a>` +
	`<a href="https://example.com/x">Elsewhere</a></div>`

func writeJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "message.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func gmailJSON() map[string]any {
	return map[string]any{
		"id":      "18c0ffee",
		"snippet": "Stocks rose.",
		"payload": map[string]any{
			"mimeType": "multipart/alternative",
			"parts": []any{
				map[string]any{"mimeType": "text/plain", "body": map[string]any{"data": payload.EncodeData("Stocks rose.")}},
				map[string]any{"mimeType": "text/html", "body": map[string]any{"data": payload.EncodeData(newsletterHTML)}},
			},
		},
	}
}

func TestDecodeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints cleaned newsletter from full message", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)

		err := (&main.DecodeCmd{File: writeJSON(t, gmailJSON())}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "<p>Stocks rose.</p>")
		assert.Contains(t, stdout.String(), `<span style="color:var(--accent-color)" href="https://www.bloomberg.com/news/articles/a">Read</span>`)
		assert.NotContains(t, stdout.String(), "<a ")
	})

	t.Run("accepts bare payload and falls back to snippet", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)
		path := writeJSON(t, map[string]any{"mimeType": "multipart/mixed", "snippet": "Preview only"})

		err := (&main.DecodeCmd{File: path}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "Preview only\n", stdout.String())
	})

	t.Run("prints same-host links", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)

		err := (&main.DecodeCmd{File: writeJSON(t, gmailJSON()), Links: true}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t,
			"https://www.bloomberg.com/news/articles/a\nhttps://www.bloomberg.com/news/articles/b\n",
			stdout.String())
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps(t)
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

		err := (&main.DecodeCmd{File: path}).Run(deps)

		assert.Equal(t, logiris.EINVALID, logiris.ErrorCode(err))
	})

	t.Run("rejects JSON without payload", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps(t)

		err := (&main.DecodeCmd{File: writeJSON(t, map[string]any{"id": "x"})}).Run(deps)

		assert.Equal(t, logiris.EINVALID, logiris.ErrorCode(err))
	})
}
