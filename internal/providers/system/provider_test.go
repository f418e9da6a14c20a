package system

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/analystapp/backend/internal/providers/terminal"
)

type stubTerminals struct {
	err   error
	count int
}

func (s *stubTerminals) Profile() terminal.Profile {
	return terminal.Profile{Shell: "/bin/bash", Args: []string{}}
}

func (s *stubTerminals) Available() error { return s.err }
func (s *stubTerminals) Count() int       { return s.count }

func TestSystemInfo(t *testing.T) {
	sys := NewProvider(&stubTerminals{count: 2}, nil)

	info := sys.Info(context.Background())

	if info.Platform != runtime.GOOS {
		t.Errorf("Expected platform %s, got %s", runtime.GOOS, info.Platform)
	}
	if info.Arch != runtime.GOARCH {
		t.Errorf("Expected arch %s, got %s", runtime.GOARCH, info.Arch)
	}
	if info.GoVersion == "" {
		t.Error("Expected go_version in response")
	}
	if info.CPUs < 1 {
		t.Errorf("Expected at least one cpu, got %d", info.CPUs)
	}
	if info.Shell.Shell != "/bin/bash" {
		t.Errorf("Expected shell /bin/bash, got %s", info.Shell.Shell)
	}
	if !info.TerminalAvailable || info.TerminalError != "" {
		t.Error("Expected terminal to be available")
	}
	if info.ActiveTerminals != 2 {
		t.Errorf("Expected 2 active terminals, got %d", info.ActiveTerminals)
	}
}

func TestSystemInfoDirectories(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	info := NewProvider(nil, nil).Info(context.Background())

	if info.Home != home {
		t.Errorf("Expected home %s, got %s", home, info.Home)
	}
	if info.Documents != filepath.Join(home, "Documents") {
		t.Errorf("Unexpected documents dir %s", info.Documents)
	}
	if info.Downloads != filepath.Join(home, "Downloads") {
		t.Errorf("Unexpected downloads dir %s", info.Downloads)
	}
}

func TestSystemInfoTerminalUnavailable(t *testing.T) {
	sys := NewProvider(&stubTerminals{err: errors.New("no ptmx")}, nil)

	info := sys.Info(context.Background())

	if info.TerminalAvailable {
		t.Error("Expected terminal to be unavailable")
	}
	if info.TerminalError != "no ptmx" {
		t.Errorf("Expected terminal error 'no ptmx', got %q", info.TerminalError)
	}
}

func TestSystemUptime(t *testing.T) {
	sys := NewProvider(nil, nil)

	first := sys.Info(context.Background()).UptimeSeconds
	second := sys.Info(context.Background()).UptimeSeconds

	if second < first {
		t.Errorf("Uptime went backwards: %f then %f", first, second)
	}
}
