package terminal

import (
	"errors"
	"io"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSpawner struct {
	availErr  error
	spawnErr  error
	configure func(*fakeProcess)
	// entered and release, when set, hold Spawn until release is closed.
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	opts  []SpawnOptions
	procs []*fakeProcess
}

func (s *fakeSpawner) Available() error { return s.availErr }

func (s *fakeSpawner) Spawn(opts SpawnOptions) (Process, error) {
	if s.release != nil {
		s.entered <- struct{}{}
		<-s.release
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.opts = append(s.opts, opts)
	if s.spawnErr != nil {
		return nil, s.spawnErr
	}

	p := newFakeProcess()
	if s.configure != nil {
		s.configure(p)
	}
	s.procs = append(s.procs, p)
	return p, nil
}

func (s *fakeSpawner) spawned() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}

func (s *fakeSpawner) last(t *testing.T) (*fakeProcess, SpawnOptions) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.procs, "no process spawned")
	return s.procs[len(s.procs)-1], s.opts[len(s.opts)-1]
}

// fakeProcess behaves like a shell on a pty: output written with emit is
// readable until the process exits and the buffer is drained, or until
// Close.
type fakeProcess struct {
	echo         bool
	ignoreHangup bool
	holdOpen     bool // a background job keeps the pty open after exit
	signalErr    error

	out     chan []byte
	pending []byte
	closed  chan struct{}
	exited  chan struct{}

	mu       sync.Mutex
	status   ExitStatus
	input    []byte
	signals  []os.Signal
	sizes    [][2]int
	exitOnce sync.Once
	closeOne sync.Once
}

func newFakeProcess() *fakeProcess {
	return &fakeProcess{
		out:    make(chan []byte, 256),
		closed: make(chan struct{}),
		exited: make(chan struct{}),
	}
}

func (p *fakeProcess) emit(s string) {
	p.out <- []byte(s)
}

func (p *fakeProcess) exit(status ExitStatus) {
	p.exitOnce.Do(func() {
		p.mu.Lock()
		p.status = status
		p.mu.Unlock()
		close(p.exited)
	})
}

func (p *fakeProcess) Read(b []byte) (int, error) {
	if len(p.pending) > 0 {
		n := copy(b, p.pending)
		p.pending = p.pending[n:]
		return n, nil
	}

	eof := p.exited
	if p.holdOpen {
		eof = nil
	}

	select {
	case data := <-p.out:
		return p.deliver(b, data), nil
	case <-p.closed:
	case <-eof:
	}

	select {
	case data := <-p.out:
		return p.deliver(b, data), nil
	default:
		return 0, io.EOF
	}
}

func (p *fakeProcess) deliver(b, data []byte) int {
	n := copy(b, data)
	p.pending = append(p.pending, data[n:]...)
	return n
}

func (p *fakeProcess) Write(b []byte) (int, error) {
	select {
	case <-p.exited:
		return 0, errors.New("input/output error")
	default:
	}

	p.mu.Lock()
	p.input = append(p.input, b...)
	p.mu.Unlock()

	if p.echo {
		p.out <- append([]byte(nil), b...)
	}
	return len(b), nil
}

func (p *fakeProcess) Pid() int { return 0 }

func (p *fakeProcess) Resize(cols, rows int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sizes = append(p.sizes, [2]int{cols, rows})
	return nil
}

func (p *fakeProcess) Signal(sig os.Signal) error {
	if p.signalErr != nil {
		return p.signalErr
	}

	p.mu.Lock()
	p.signals = append(p.signals, sig)
	p.mu.Unlock()

	if !p.ignoreHangup {
		p.exit(ExitStatus{Signal: int(syscall.SIGHUP)})
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.exit(ExitStatus{Signal: int(syscall.SIGKILL)})
	return nil
}

func (p *fakeProcess) Wait() (ExitStatus, error) {
	<-p.exited
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, nil
}

func (p *fakeProcess) Close() error {
	p.closeOne.Do(func() { close(p.closed) })
	return nil
}

func (p *fakeProcess) written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.input)
}

func (p *fakeProcess) signalCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.signals)
}

// recordingSurface collects every event it is notified of.
type recordingSurface struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSurface) Notify(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSurface) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recordingSurface) forTerminal(terminalID string) []Event {
	var out []Event
	for _, ev := range r.snapshot() {
		if ev.TerminalID == terminalID {
			out = append(out, ev)
		}
	}
	return out
}

// output concatenates the data events for terminalID.
func (r *recordingSurface) output(terminalID string) string {
	var s string
	for _, ev := range r.forTerminal(terminalID) {
		if ev.Type == EventData {
			s += string(ev.Data)
		}
	}
	return s
}

func (r *recordingSurface) closed(terminalID string) []Event {
	var out []Event
	for _, ev := range r.forTerminal(terminalID) {
		if ev.Type == EventClosed {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recordingSurface) waitClosed(t *testing.T, terminalID string) Event {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(r.closed(terminalID)) > 0
	}, 2*time.Second, 5*time.Millisecond, "terminal %s never closed", terminalID)
	return r.closed(terminalID)[0]
}

func (r *recordingSurface) waitOutput(t *testing.T, terminalID, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return r.output(terminalID) == want
	}, 2*time.Second, 5*time.Millisecond, "output for %s never became %q", terminalID, want)
}

// testHost pins a linux host whose fallback directory is home.
func testHost(home string, env map[string]string) Host {
	return Host{
		GOOS: "linux",
		Getenv: func(key string) string {
			if key == "HOME" {
				return home
			}
			return env[key]
		},
		Environ: func() []string {
			return []string{"PATH=/usr/bin:/bin", "TERM=dumb", "LANG=C.UTF-8"}
		},
		Getwd: os.Getwd,
		Stat:  os.Stat,
	}
}
