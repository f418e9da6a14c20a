//go:build !windows

package terminal

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPTYManager(t *testing.T) (*Manager, *recordingSurface) {
	t.Helper()

	spawner := NewPTYSpawner()
	if err := spawner.Available(); err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	if _, err := os.Stat(bashPath); err != nil {
		t.Skip("/bin/bash not installed")
	}

	host := DefaultHost()
	host.Getenv = func(key string) string {
		if key == "SHELL" {
			return bashPath
		}
		return os.Getenv(key)
	}

	cfg := DefaultConfig()
	cfg.KillTimeout = time.Second
	m := NewManager(spawner, cfg).WithHost(host)
	surface := &recordingSurface{}
	m.Attach(surface)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		m.Shutdown(ctx)
	})
	return m, surface
}

func waitContains(t *testing.T, surface *recordingSurface, terminalID, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return strings.Contains(surface.output(terminalID), want)
	}, 5*time.Second, 10*time.Millisecond, "output never contained %q", want)
}

func TestPTYRoundTrip(t *testing.T) {
	m, surface := newPTYManager(t)
	dir := t.TempDir()

	handle, err := m.Create(context.Background(), dir)
	require.NoError(t, err)

	require.NoError(t, m.Write(handle.TerminalID, []byte("echo marker_$((40+2)) $TERM $COLORTERM\r")))
	waitContains(t, surface, handle.TerminalID, "marker_42 xterm-256color truecolor")

	require.NoError(t, m.Write(handle.TerminalID, []byte("exit 7\r")))
	closed := surface.waitClosed(t, handle.TerminalID)
	assert.Equal(t, 7, closed.ExitCode)
	assert.Zero(t, m.Count())
}

func TestPTYDestroy(t *testing.T) {
	m, surface := newPTYManager(t)

	handle, err := m.Create(context.Background(), "")
	require.NoError(t, err)

	require.NoError(t, m.Write(handle.TerminalID, []byte("echo ready\r")))
	waitContains(t, surface, handle.TerminalID, "ready")

	require.NoError(t, m.Destroy(handle.TerminalID))
	closed := surface.waitClosed(t, handle.TerminalID)
	assert.NotZero(t, closed.Signal+closed.ExitCode)
}

func TestPTYResize(t *testing.T) {
	m, surface := newPTYManager(t)

	handle, err := m.Create(context.Background(), "")
	require.NoError(t, err)

	require.NoError(t, m.Resize(handle.TerminalID, 132, 50))
	require.NoError(t, m.Write(handle.TerminalID, []byte("echo size_$(stty size)\r")))
	waitContains(t, surface, handle.TerminalID, "size_50 132")
}
