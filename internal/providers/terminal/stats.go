package terminal

import (
	"github.com/shirou/gopsutil/v3/process"
)

// sampleProcess reads resource usage for pid. Fields the platform cannot
// report stay zero; nil means the process is gone or unreadable.
func sampleProcess(pid int) *ProcessStats {
	if pid <= 0 {
		return nil
	}

	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil
	}

	stats := &ProcessStats{}
	if cpu, err := p.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		stats.RSSBytes = mem.RSS
	}
	if n, err := p.NumThreads(); err == nil {
		stats.Threads = n
	}
	if children, err := p.Children(); err == nil {
		stats.Children = len(children)
	}
	return stats
}
