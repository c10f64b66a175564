//go:build integration && !windows

package rod_test

import (
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/logiris/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Close_KillsLauncherProcess(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)

	pid := fetcher.LauncherPID()
	require.NotZero(t, pid)
	require.NoError(t, syscall.Kill(pid, syscall.Signal(0)), "launcher should run before Close")

	require.NoError(t, fetcher.Close())
	time.Sleep(100 * time.Millisecond)

	// Signal 0 fails once the process is gone.
	assert.Error(t, syscall.Kill(pid, syscall.Signal(0)), "launcher should be gone after Close")
}
