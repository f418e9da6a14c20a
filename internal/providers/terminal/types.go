package terminal

import (
	"sync"
	"time"
)

// Config tunes the session manager.
type Config struct {
	Cols int
	Rows int
	// StrictLookup makes Write, Destroy and Resize on an unknown id return
	// ErrNotFound instead of silently doing nothing.
	StrictLookup bool
	// KillTimeout is how long Destroy waits after SIGHUP before sending
	// SIGKILL. Zero disables the escalation.
	KillTimeout time.Duration
	// DrainTimeout bounds how long output is still read after the shell has
	// exited before the pty is closed.
	DrainTimeout time.Duration
	ReadBuffer   int
}

// DefaultConfig returns the stock geometry and timeouts.
func DefaultConfig() Config {
	return Config{
		Cols:         80,
		Rows:         24,
		KillTimeout:  3 * time.Second,
		DrainTimeout: 250 * time.Millisecond,
		ReadBuffer:   4096,
	}
}

// Handle is returned to the caller of Create.
type Handle struct {
	TerminalID       string `json:"terminalId"`
	WorkingDirectory string `json:"workingDirectory"`
}

// EventType names a push notification.
type EventType string

const (
	EventData   EventType = "terminal-data"
	EventClosed EventType = "terminal-closed"
)

// Event is a notification pushed to the display surface.
type Event struct {
	Type       EventType
	TerminalID string
	Data       []byte // EventData
	ExitCode   int    // EventClosed
	Signal     int    // EventClosed
}

// Surface receives notifications. Notify is called from session goroutines
// and must not block for long; per-session call order is the delivery order.
type Surface interface {
	Notify(ev Event)
}

// Session is one running shell.
type Session struct {
	ID         string
	Shell      string
	Args       []string
	WorkingDir string
	StartedAt  time.Time

	proc Process

	mu        sync.RWMutex
	cols      int
	rows      int
	destroyed bool // output is dropped once set

	finishOnce sync.Once
	done       chan struct{}
	killTimer  *time.Timer
}

func (s *Session) info() SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SessionInfo{
		ID:         s.ID,
		Shell:      s.Shell,
		Args:       s.Args,
		WorkingDir: s.WorkingDir,
		Cols:       s.cols,
		Rows:       s.rows,
		StartedAt:  s.StartedAt,
		PID:        s.proc.Pid(),
	}
}

// SessionInfo is the public representation of a session
type SessionInfo struct {
	ID         string        `json:"id"`
	Shell      string        `json:"shell"`
	Args       []string      `json:"args"`
	WorkingDir string        `json:"working_dir"`
	Cols       int           `json:"cols"`
	Rows       int           `json:"rows"`
	StartedAt  time.Time     `json:"started_at"`
	PID        int           `json:"pid"`
	Process    *ProcessStats `json:"process,omitempty"`
}

// ProcessStats is a point-in-time sample of the shell process.
type ProcessStats struct {
	CPUPercent float64 `json:"cpu_percent"`
	RSSBytes   uint64  `json:"rss_bytes"`
	Threads    int32   `json:"threads"`
	Children   int     `json:"children"`
}
