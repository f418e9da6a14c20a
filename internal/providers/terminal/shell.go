package terminal

import (
	"os"
	"runtime"
	"strings"
)

const (
	windowsShell = "powershell.exe"
	zshPath      = "/bin/zsh"
	bashPath     = "/bin/bash"

	// TerminalName is the terminal type the pty is opened as. The TERM
	// override below wins over it in the child environment.
	TerminalName = "xterm-color"
)

// envOverrides are forced into every spawned shell's environment.
var envOverrides = []string{
	"TERM=xterm-256color",
	"COLORTERM=truecolor",
}

// Profile is the program and arguments used to start a shell.
type Profile struct {
	Shell string   `json:"shell"`
	Args  []string `json:"args"`
}

// ResolveShell picks the shell for a platform. Only powershell, zsh and bash
// are ever launched: any $SHELL containing "zsh" collapses to /bin/zsh and
// everything else to /bin/bash.
func ResolveShell(goos, envShell string) Profile {
	if goos == "windows" {
		return Profile{Shell: windowsShell, Args: []string{}}
	}

	shell := envShell
	if shell == "" {
		shell = bashPath
	}
	if strings.Contains(shell, "zsh") {
		return Profile{Shell: zshPath, Args: []string{}}
	}
	return Profile{Shell: bashPath, Args: []string{}}
}

// BuildEnv returns base with the terminal overrides applied. Inherited
// entries for the overridden keys are dropped rather than duplicated.
func BuildEnv(base []string) []string {
	env := make([]string, 0, len(base)+len(envOverrides))
	for _, kv := range base {
		if overridden(kv) {
			continue
		}
		env = append(env, kv)
	}
	return append(env, envOverrides...)
}

func overridden(kv string) bool {
	key, _, _ := strings.Cut(kv, "=")
	for _, o := range envOverrides {
		okey, _, _ := strings.Cut(o, "=")
		if key == okey {
			return true
		}
	}
	return false
}

// Host is the slice of the operating system the manager consults. Tests
// replace it to pin the platform, environment and filesystem view.
type Host struct {
	GOOS    string
	Getenv  func(string) string
	Environ func() []string
	Getwd   func() (string, error)
	Stat    func(string) (os.FileInfo, error)
}

// DefaultHost returns the real host.
func DefaultHost() Host {
	return Host{
		GOOS:    runtime.GOOS,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		Getwd:   os.Getwd,
		Stat:    os.Stat,
	}
}

// Profile resolves the shell for this host.
func (h Host) Profile() Profile {
	return ResolveShell(h.GOOS, h.Getenv("SHELL"))
}

// defaultDir is the fallback working directory: $HOME, then $USERPROFILE,
// then the server's own working directory.
func (h Host) defaultDir() (string, error) {
	for _, key := range []string{"HOME", "USERPROFILE"} {
		if dir := h.Getenv(key); dir != "" {
			return dir, nil
		}
	}
	return h.Getwd()
}
