package system

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/analystapp/backend/internal/providers/terminal"
	"github.com/analystapp/backend/internal/shared/paths"
)

// Terminals is the view of the session manager reported in Info.
type Terminals interface {
	Profile() terminal.Profile
	Available() error
	Count() int
}

// Provider reports information about the host the shells run on
type Provider struct {
	startTime time.Time
	terminals Terminals
	logger    *zap.Logger
}

// Info describes the host and the terminal facility
type Info struct {
	Platform   string `json:"platform"`
	Arch       string `json:"arch"`
	GoVersion  string `json:"go_version"`
	Executable string `json:"exec_path"`
	Hostname   string `json:"hostname,omitempty"`
	OSVersion  string `json:"os_version,omitempty"`
	CPUs       int    `json:"cpus"`

	Home      string `json:"home"`
	Documents string `json:"documents"`
	Downloads string `json:"downloads"`

	Shell             terminal.Profile `json:"shell"`
	TerminalAvailable bool             `json:"terminal_available"`
	TerminalError     string           `json:"terminal_error,omitempty"`
	ActiveTerminals   int              `json:"active_terminals"`
	Goroutines        int              `json:"goroutines"`
	MemoryTotalBytes  uint64           `json:"memory_total_bytes,omitempty"`
	MemoryUsedPercent float64          `json:"memory_used_percent,omitempty"`
	UptimeSeconds     float64          `json:"uptime_seconds"`
	HostUptimeSeconds uint64           `json:"host_uptime_seconds,omitempty"`
}

// NewProvider creates a system provider
func NewProvider(terminals Terminals, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		startTime: time.Now(),
		terminals: terminals,
		logger:    logger,
	}
}

// Info collects host information. Fields the platform cannot report are
// left empty.
func (p *Provider) Info(ctx context.Context) *Info {
	info := &Info{
		Platform:      runtime.GOOS,
		Arch:          runtime.GOARCH,
		GoVersion:     runtime.Version(),
		CPUs:          runtime.NumCPU(),
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: time.Since(p.startTime).Seconds(),
	}

	if exe, err := os.Executable(); err == nil {
		info.Executable = exe
	}

	if user, err := paths.Current(); err == nil {
		info.Home = user.Home
		info.Documents = user.Documents
		info.Downloads = user.Downloads
	}

	if hi, err := host.InfoWithContext(ctx); err == nil {
		info.Hostname = hi.Hostname
		info.OSVersion = hi.PlatformVersion
		info.HostUptimeSeconds = hi.Uptime
	} else {
		p.logger.Debug("Host info unavailable", zap.Error(err))
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.MemoryTotalBytes = vm.Total
		info.MemoryUsedPercent = vm.UsedPercent
	}

	if p.terminals != nil {
		info.Shell = p.terminals.Profile()
		info.ActiveTerminals = p.terminals.Count()
		if err := p.terminals.Available(); err != nil {
			info.TerminalError = err.Error()
		} else {
			info.TerminalAvailable = true
		}
	}

	return info
}
