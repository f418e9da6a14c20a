package terminal

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// SpawnOptions describes a shell to start under a pseudo-terminal.
type SpawnOptions struct {
	Shell string
	Args  []string
	Dir   string
	Env   []string
	Name  string
	Cols  int
	Rows  int
}

// ExitStatus is how a shell process ended. Signal is 0 unless the process
// was terminated by a signal, in which case Code is 0.
type ExitStatus struct {
	Code   int
	Signal int
}

// Process is a running shell attached to a pseudo-terminal.
type Process interface {
	io.ReadWriter
	Pid() int
	Resize(cols, rows int) error
	Signal(sig os.Signal) error
	Kill() error
	// Wait blocks until the process exits.
	Wait() (ExitStatus, error)
	// Close releases the pty master; pending Reads return.
	Close() error
}

// Spawner is the pseudo-terminal facility.
type Spawner interface {
	// Available returns the reason spawning is impossible on this host,
	// or nil. The answer does not change over the process lifetime.
	Available() error
	Spawn(opts SpawnOptions) (Process, error)
}

// hangup is what Destroy sends first, matching what a closing terminal
// window delivers to its shell.
var hangup os.Signal = syscall.SIGHUP

type ptySpawner struct {
	probeErr error
}

// NewPTYSpawner returns the creack/pty backed facility. It opens and closes
// one pty pair up front; a failure there is cached and reported by
// Available for the rest of the process lifetime.
func NewPTYSpawner() Spawner {
	return &ptySpawner{probeErr: probe()}
}

func probe() error {
	master, slave, err := pty.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}
	slave.Close()
	master.Close()
	return nil
}

func (s *ptySpawner) Available() error {
	return s.probeErr
}

func (s *ptySpawner) Spawn(opts SpawnOptions) (Process, error) {
	if s.probeErr != nil {
		return nil, s.probeErr
	}

	cmd := exec.Command(opts.Shell, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.Env = withTermName(opts.Env, opts.Name)

	f, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: uint16(opts.Cols),
		Rows: uint16(opts.Rows),
	})
	if err != nil {
		return nil, err
	}

	return &ptyProcess{cmd: cmd, pty: f}, nil
}

// withTermName sets TERM to name unless env already carries a TERM.
func withTermName(env []string, name string) []string {
	if name == "" {
		return env
	}
	for _, kv := range env {
		if strings.HasPrefix(kv, "TERM=") {
			return env
		}
	}
	return append(env, "TERM="+name)
}

type ptyProcess struct {
	cmd       *exec.Cmd
	pty       *os.File
	closeOnce sync.Once
	closeErr  error
}

func (p *ptyProcess) Read(b []byte) (int, error)  { return p.pty.Read(b) }
func (p *ptyProcess) Write(b []byte) (int, error) { return p.pty.Write(b) }

func (p *ptyProcess) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *ptyProcess) Resize(cols, rows int) error {
	return pty.Setsize(p.pty, &pty.Winsize{
		Cols: uint16(cols),
		Rows: uint16(rows),
	})
}

func (p *ptyProcess) Signal(sig os.Signal) error {
	return p.cmd.Process.Signal(sig)
}

func (p *ptyProcess) Kill() error {
	return p.cmd.Process.Kill()
}

func (p *ptyProcess) Wait() (ExitStatus, error) {
	err := p.cmd.Wait()
	if p.cmd.ProcessState == nil {
		return ExitStatus{}, err
	}
	// A non-zero exit is data, not a failure
	return exitStatusOf(p.cmd.ProcessState), nil
}

func (p *ptyProcess) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.pty.Close()
	})
	return p.closeErr
}

func exitStatusOf(state *os.ProcessState) ExitStatus {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ExitStatus{Signal: int(ws.Signal())}
	}
	return ExitStatus{Code: state.ExitCode()}
}
