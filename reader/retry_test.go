package reader_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/logiris"
	"github.com/fwojciec/logiris/reader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	noDelays := []time.Duration{0, 0, 0}

	t.Run("returns first success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		html, err := reader.FetchWithRetry(context.Background(), "u", func(context.Context, string) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("connection reset")
			}
			return "<html></html>", nil
		}, noDelays)

		require.NoError(t, err)
		assert.Equal(t, "<html></html>", html)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after one attempt per delay plus one", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := reader.FetchWithRetry(context.Background(), "u", func(context.Context, string) (string, error) {
			calls++
			return "", errors.New("503")
		}, noDelays)

		require.EqualError(t, err, "503")
		assert.Equal(t, 4, calls)
	})

	t.Run("does not retry invalid requests", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := reader.FetchWithRetry(context.Background(), "u", func(context.Context, string) (string, error) {
			calls++
			return "", logiris.Errorf(logiris.EINVALID, "bad url")
		}, noDelays)

		assert.Equal(t, logiris.EINVALID, logiris.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops waiting when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		_, err := reader.FetchWithRetry(ctx, "u", func(context.Context, string) (string, error) {
			cancel()
			return "", errors.New("timeout")
		}, []time.Duration{time.Hour})

		assert.ErrorIs(t, err, context.Canceled)
	})
}
