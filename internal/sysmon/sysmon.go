// Package sysmon provides CPU and memory usage sampling for the dashboard.
package sysmon

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats holds a single snapshot of resource usage.
type Stats struct {
	CPUPercent float64 // system-wide, 0.0 .. 100.0
	MemPercent float64 // system-wide, 0.0 .. 100.0
	// ProcRSS is the resident set size of this process in bytes. Sampler
	// children are not included.
	ProcRSS uint64
}

// Sample collects a single snapshot. CPU uses interval=0 (delta since the
// last call). Fields that cannot be read are left at zero.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfo(); err == nil && info != nil {
			s.ProcRSS = info.RSS
		}
	}
	return s
}

// Watch samples every interval until ctx is done, then closes the returned
// channel. A slow reader misses samples rather than delaying them.
func Watch(ctx context.Context, interval time.Duration) <-chan Stats {
	ch := make(chan Stats, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case ch <- Sample():
				default:
				}
			}
		}
	}()
	return ch
}
