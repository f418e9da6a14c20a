package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveShell(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		envShell string
		want     string
	}{
		{"windows ignores SHELL", "windows", "/bin/zsh", "powershell.exe"},
		{"windows without SHELL", "windows", "", "powershell.exe"},
		{"zsh", "darwin", "/bin/zsh", "/bin/zsh"},
		{"homebrew zsh", "darwin", "/opt/homebrew/bin/zsh", "/bin/zsh"},
		{"bash", "linux", "/bin/bash", "/bin/bash"},
		{"fish collapses to bash", "linux", "/usr/bin/fish", "/bin/bash"},
		{"unset", "linux", "", "/bin/bash"},
		{"freebsd", "freebsd", "/usr/local/bin/zsh", "/bin/zsh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := ResolveShell(tt.goos, tt.envShell)
			assert.Equal(t, tt.want, profile.Shell)
			assert.NotNil(t, profile.Args)
			assert.Empty(t, profile.Args)
		})
	}
}

func TestBuildEnv(t *testing.T) {
	base := []string{
		"PATH=/usr/bin",
		"TERM=dumb",
		"HOME=/home/ana",
		"COLORTERM=24bit",
		"TERMINFO=/usr/share/terminfo",
	}

	env := BuildEnv(base)

	assert.Equal(t, []string{
		"PATH=/usr/bin",
		"HOME=/home/ana",
		"TERMINFO=/usr/share/terminfo",
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	}, env)
	assert.Equal(t, "TERM=dumb", base[1], "base must not be modified")
}

func TestBuildEnvEmptyBase(t *testing.T) {
	assert.Equal(t, []string{"TERM=xterm-256color", "COLORTERM=truecolor"}, BuildEnv(nil))
}

func TestWithTermName(t *testing.T) {
	assert.Equal(t, []string{"A=1", "TERM=xterm-color"}, withTermName([]string{"A=1"}, TerminalName))
	assert.Equal(t, []string{"TERM=xterm-256color"}, withTermName([]string{"TERM=xterm-256color"}, TerminalName))
	assert.Equal(t, []string{"A=1"}, withTermName([]string{"A=1"}, ""))
}

func TestHostDefaultDir(t *testing.T) {
	host := Host{
		Getenv: func(key string) string {
			if key == "USERPROFILE" {
				return `C:\Users\ana`
			}
			return ""
		},
		Getwd: func() (string, error) { return "/srv", nil },
	}

	dir, err := host.defaultDir()
	assert.NoError(t, err)
	assert.Equal(t, `C:\Users\ana`, dir)

	host.Getenv = func(string) string { return "" }
	dir, err = host.defaultDir()
	assert.NoError(t, err)
	assert.Equal(t, "/srv", dir)
}
