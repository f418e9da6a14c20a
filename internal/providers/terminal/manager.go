package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/analystapp/backend/internal/infrastructure/monitoring"
	"github.com/analystapp/backend/internal/shared/id"
)

// Manager owns the registry of live terminal sessions
type Manager struct {
	spawner   Spawner
	available error // cached facility probe
	cfg       Config
	host      Host
	ids       *id.Generator
	logger    *zap.Logger
	metrics   *monitoring.Metrics

	sessions sync.Map // map[string]*Session
	live     atomic.Int64
	wg       sync.WaitGroup // one per running session

	// lifecycle is held shared by create from the closing check until the
	// session is registered, and exclusively by Shutdown to set closing.
	lifecycle sync.RWMutex
	closing   atomic.Bool

	surfaceMu sync.RWMutex
	surface   Surface // Protected by surfaceMu, nil when detached
}

// NewManager creates a session manager on top of spawner. The facility is
// probed once here; a failure makes every Create fail with
// TERMINAL_NOT_AVAILABLE.
func NewManager(spawner Spawner, cfg Config) *Manager {
	if cfg.Cols <= 0 {
		cfg.Cols = 80
	}
	if cfg.Rows <= 0 {
		cfg.Rows = 24
	}
	if cfg.ReadBuffer <= 0 {
		cfg.ReadBuffer = 4096
	}

	return &Manager{
		spawner:   spawner,
		available: spawner.Available(),
		cfg:       cfg,
		host:      DefaultHost(),
		ids:       id.Default(),
		logger:    zap.NewNop(),
	}
}

// WithLogger sets the logger
func (m *Manager) WithLogger(logger *zap.Logger) *Manager {
	m.logger = logger
	if m.available != nil {
		m.logger.Warn("Terminal functionality disabled", zap.Error(m.available))
	}
	return m
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithHost replaces the operating system view
func (m *Manager) WithHost(host Host) *Manager {
	m.host = host
	return m
}

// WithIDs replaces the id generator
func (m *Manager) WithIDs(ids *id.Generator) *Manager {
	m.ids = ids
	return m
}

// Available reports why terminals cannot be created, or nil.
func (m *Manager) Available() error {
	return m.available
}

// Profile returns the shell this manager launches.
func (m *Manager) Profile() Profile {
	return m.host.Profile()
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	return int(m.live.Load())
}

// Attach makes s the display surface, replacing any previous one.
func (m *Manager) Attach(s Surface) {
	m.surfaceMu.Lock()
	m.surface = s
	m.surfaceMu.Unlock()
}

// Detach removes s if it is still the attached surface. It reports whether
// anything was detached.
func (m *Manager) Detach(s Surface) bool {
	m.surfaceMu.Lock()
	defer m.surfaceMu.Unlock()

	if m.surface != s {
		return false
	}
	m.surface = nil
	return true
}

// Create spawns a shell in workingDir, or in the fallback directory when
// workingDir is empty.
func (m *Manager) Create(ctx context.Context, workingDir string) (*Handle, error) {
	if m.available != nil {
		m.metrics.RecordCreateError(CodeNotAvailable)
		return nil, &Error{
			Code:    CodeNotAvailable,
			Message: "Terminal functionality is not available. The pseudo-terminal facility could not be loaded.",
			Err:     m.available,
		}
	}

	handle, err := m.create(ctx, workingDir)
	if err != nil {
		m.metrics.RecordCreateError(CodeCreate)
		m.logger.Warn("Failed to create terminal", zap.String("cwd", workingDir), zap.Error(err))
		return nil, err
	}
	return handle, nil
}

func (m *Manager) create(ctx context.Context, workingDir string) (*Handle, error) {
	m.lifecycle.RLock()
	defer m.lifecycle.RUnlock()

	if m.closing.Load() {
		return nil, createError("session manager is shutting down", ErrShuttingDown)
	}

	dir, err := m.resolveDir(workingDir)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, createError("terminal creation cancelled", err)
	}

	profile := m.host.Profile()
	terminalID := m.ids.TerminalID().String()

	proc, err := m.spawner.Spawn(SpawnOptions{
		Shell: profile.Shell,
		Args:  profile.Args,
		Dir:   dir,
		Env:   BuildEnv(m.host.Environ()),
		Name:  TerminalName,
		Cols:  m.cfg.Cols,
		Rows:  m.cfg.Rows,
	})
	if err != nil {
		return nil, createError(fmt.Sprintf("failed to start %s: %v", profile.Shell, err), err)
	}

	s := &Session{
		ID:         terminalID,
		Shell:      profile.Shell,
		Args:       profile.Args,
		WorkingDir: dir,
		StartedAt:  time.Now(),
		proc:       proc,
		cols:       m.cfg.Cols,
		rows:       m.cfg.Rows,
		done:       make(chan struct{}),
	}

	m.sessions.Store(terminalID, s)
	m.metrics.SetTerminalsActive(m.live.Add(1))
	m.metrics.IncTerminalsCreated()

	m.wg.Add(1)
	go m.run(s)

	m.logger.Info("Terminal created",
		zap.String("terminal_id", terminalID),
		zap.String("shell", profile.Shell),
		zap.String("cwd", dir),
		zap.Int("pid", proc.Pid()),
	)

	return &Handle{TerminalID: terminalID, WorkingDirectory: dir}, nil
}

// resolveDir applies the fallback chain and checks the result is an
// existing directory.
func (m *Manager) resolveDir(workingDir string) (string, error) {
	dir := workingDir
	if dir == "" {
		fallback, err := m.host.defaultDir()
		if err != nil {
			return "", createError(fmt.Sprintf("cannot determine working directory: %v", err), err)
		}
		dir = fallback
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", createError(fmt.Sprintf("cannot resolve working directory: %s - %v", dir, err), err)
	}

	info, err := m.host.Stat(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", createError("Working directory does not exist: "+abs, ErrInvalidDirectory)
	case err != nil:
		return "", createError(fmt.Sprintf("Cannot access working directory: %s - %v", abs, err), ErrInvalidDirectory)
	case !info.IsDir():
		return "", createError("Working directory path is not a directory: "+abs, ErrInvalidDirectory)
	}
	return abs, nil
}

func createError(msg string, err error) *Error {
	return &Error{Code: CodeCreate, Message: msg, Err: err}
}

// Write forwards data verbatim to the shell's input.
func (m *Manager) Write(terminalID string, data []byte) error {
	s, ok := m.lookup(terminalID)
	if !ok {
		return m.unknown("write", terminalID)
	}

	if _, err := s.proc.Write(data); err != nil {
		// The shell is going away; its exit event will follow
		m.logger.Debug("Write to terminal failed",
			zap.String("terminal_id", terminalID),
			zap.Error(err),
		)
		return nil
	}

	m.metrics.AddBytes("in", len(data))
	return nil
}

// Resize changes the pty window size
func (m *Manager) Resize(terminalID string, cols, rows int) error {
	if cols <= 0 || rows <= 0 || cols > 65535 || rows > 65535 {
		return &Error{
			Code:    CodeInvalidSize,
			Message: fmt.Sprintf("invalid terminal size %dx%d", cols, rows),
			Err:     ErrInvalidSize,
		}
	}

	s, ok := m.lookup(terminalID)
	if !ok {
		return m.unknown("resize", terminalID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.proc.Resize(cols, rows); err != nil {
		return fmt.Errorf("failed to resize terminal %s: %w", terminalID, err)
	}
	s.cols = cols
	s.rows = rows
	return nil
}

// Destroy removes the session and signals its shell. The terminal-closed
// event follows once the process has been reaped. Calling Destroy for a
// session that is already gone does nothing.
func (m *Manager) Destroy(terminalID string) error {
	value, ok := m.sessions.LoadAndDelete(terminalID)
	if !ok {
		return m.unknown("destroy", terminalID)
	}
	s := value.(*Session)
	m.metrics.SetTerminalsActive(m.live.Add(-1))

	// Waits for any in-flight output delivery, none follows
	s.mu.Lock()
	s.destroyed = true
	s.mu.Unlock()

	if err := s.proc.Signal(hangup); err != nil {
		m.logger.Debug("Hangup failed, killing", zap.String("terminal_id", terminalID), zap.Error(err))
		s.proc.Kill()
	} else if m.cfg.KillTimeout > 0 {
		s.mu.Lock()
		s.killTimer = time.AfterFunc(m.cfg.KillTimeout, func() {
			select {
			case <-s.done:
			default:
				m.logger.Warn("Terminal ignored hangup, killing", zap.String("terminal_id", terminalID))
				s.proc.Kill()
			}
		})
		s.mu.Unlock()
	}

	m.logger.Info("Terminal destroyed", zap.String("terminal_id", terminalID))
	return nil
}

// Get returns information about a live session including a process sample.
func (m *Manager) Get(terminalID string) (*SessionInfo, error) {
	s, ok := m.lookup(terminalID)
	if !ok {
		return nil, &Error{Code: CodeNotFound, Message: "terminal not found: " + terminalID, Err: ErrNotFound}
	}

	info := s.info()
	info.Process = sampleProcess(info.PID)
	return &info, nil
}

// List returns all live sessions, oldest first
func (m *Manager) List() []SessionInfo {
	sessions := make([]SessionInfo, 0, m.Count())

	m.sessions.Range(func(_, value any) bool {
		sessions = append(sessions, value.(*Session).info())
		return true
	})

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	return sessions
}

// Shutdown destroys every live session and waits for their exit events,
// bounded by ctx. Create fails once Shutdown has started.
func (m *Manager) Shutdown(ctx context.Context) error {
	// Waits for in-flight creates, every later one sees closing
	m.lifecycle.Lock()
	m.closing.Store(true)
	m.lifecycle.Unlock()

	m.sessions.Range(func(key, _ any) bool {
		m.Destroy(key.(string))
		return true
	})

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("terminals still running at shutdown: %w", ctx.Err())
	}
}

func (m *Manager) lookup(terminalID string) (*Session, bool) {
	value, ok := m.sessions.Load(terminalID)
	if !ok {
		return nil, false
	}
	return value.(*Session), true
}

func (m *Manager) unknown(op, terminalID string) error {
	m.metrics.RecordUnknownTerminal(op)
	m.logger.Debug("Unknown terminal",
		zap.String("op", op),
		zap.String("terminal_id", terminalID),
	)

	if !m.cfg.StrictLookup {
		return nil
	}
	return &Error{Code: CodeNotFound, Message: "terminal not found: " + terminalID, Err: ErrNotFound}
}

// run owns a session from spawn to reap.
func (m *Manager) run(s *Session) {
	defer m.wg.Done()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		m.pump(s)
	}()

	status, err := s.proc.Wait()
	if err != nil {
		m.logger.Warn("Waiting for terminal failed", zap.String("terminal_id", s.ID), zap.Error(err))
	}

	// Let the reader drain what the shell wrote before exiting. A background
	// job still holding the pty would keep it open forever, hence the bound.
	select {
	case <-readDone:
	case <-time.After(m.cfg.DrainTimeout):
	}
	s.proc.Close()
	<-readDone

	m.finish(s, status)
}

// pump relays pty output until the pty is closed.
func (m *Manager) pump(s *Session) {
	buf := make([]byte, m.cfg.ReadBuffer)
	var carry []byte

	for {
		n, err := s.proc.Read(buf)
		if n > 0 {
			chunk := make([]byte, len(carry)+n)
			copy(chunk, carry)
			copy(chunk[len(carry):], buf[:n])

			complete, rest := splitIncompleteRune(chunk)
			carry = append([]byte(nil), rest...)
			if len(complete) > 0 {
				m.emitData(s, complete)
			}
		}
		if err != nil {
			break
		}
	}

	if len(carry) > 0 {
		m.emitData(s, carry)
	}
}

func (m *Manager) emitData(s *Session, data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return
	}

	m.metrics.AddBytes("out", len(data))
	m.notify(Event{Type: EventData, TerminalID: s.ID, Data: data})
}

// finish is the single termination path for both Destroy and spontaneous
// exit.
func (m *Manager) finish(s *Session, status ExitStatus) {
	s.finishOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		if s.killTimer != nil {
			s.killTimer.Stop()
		}
		cause := "exited"
		if s.destroyed {
			cause = "destroyed"
		}
		s.mu.Unlock()

		if m.sessions.CompareAndDelete(s.ID, s) {
			m.metrics.SetTerminalsActive(m.live.Add(-1))
		}
		m.metrics.RecordExit(cause)

		m.logger.Info("Terminal exited",
			zap.String("terminal_id", s.ID),
			zap.String("cause", cause),
			zap.Int("exit_code", status.Code),
			zap.Int("signal", status.Signal),
		)

		m.notify(Event{
			Type:       EventClosed,
			TerminalID: s.ID,
			ExitCode:   status.Code,
			Signal:     status.Signal,
		})
	})
}

func (m *Manager) notify(ev Event) {
	m.surfaceMu.RLock()
	surface := m.surface
	m.surfaceMu.RUnlock()

	if surface == nil {
		m.metrics.IncNotificationsDropped()
		return
	}
	surface.Notify(ev)
}
