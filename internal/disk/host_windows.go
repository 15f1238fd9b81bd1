//go:build windows

package disk

import (
	"context"
	"sync"

	"github.com/StackExchange/wmi"
	"github.com/shirou/gopsutil/v3/disk"
)

// WindowsHost uses gopsutil and falls back to WMI performance counters for
// drives that DeviceIoControl does not report on.
type WindowsHost struct {
	psutilHost

	mu sync.Mutex
	// widened read/write operation counts per drive
	ops map[string][2]uint64
}

// newPlatformHost creates a new Windows disk host
func newPlatformHost() Host {
	return &WindowsHost{ops: make(map[string][2]uint64)}
}

// Win32_PerfRawData_PerfDisk_LogicalDisk represents raw logical disk counters.
// The operation counts are 32-bit and wrap; IOCounters widens them.
type Win32_PerfRawData_PerfDisk_LogicalDisk struct {
	Name                 string
	DiskReadsPersec      uint32
	DiskWritesPersec     uint32
	DiskReadBytesPersec  uint64
	DiskWriteBytesPersec uint64
	PercentDiskReadTime  uint64
	PercentDiskWriteTime uint64
}

// IOCounters returns per-drive counters keyed by drive letter, e.g. "C:"
func (h *WindowsHost) IOCounters(ctx context.Context) (map[string]disk.IOCountersStat, error) {
	counters, err := h.psutilHost.IOCounters(ctx)
	if err != nil || counters == nil {
		counters = make(map[string]disk.IOCountersStat)
	}

	var perf []Win32_PerfRawData_PerfDisk_LogicalDisk
	if werr := wmi.Query("SELECT * FROM Win32_PerfRawData_PerfDisk_LogicalDisk", &perf); werr != nil {
		// WMI unavailable, keep whatever gopsutil found
		return counters, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, p := range perf {
		if p.Name == "_Total" {
			continue
		}
		if _, ok := counters[p.Name]; ok {
			continue
		}

		last := h.ops[p.Name]
		ops := [2]uint64{
			extend32(last[0], p.DiskReadsPersec),
			extend32(last[1], p.DiskWritesPersec),
		}
		h.ops[p.Name] = ops

		// Percent*Time raw values are 100ns ticks
		counters[p.Name] = disk.IOCountersStat{
			Name:       p.Name,
			ReadCount:  ops[0],
			WriteCount: ops[1],
			ReadBytes:  p.DiskReadBytesPersec,
			WriteBytes: p.DiskWriteBytesPersec,
			ReadTime:   p.PercentDiskReadTime / 10000,
			WriteTime:  p.PercentDiskWriteTime / 10000,
		}
	}

	return counters, nil
}
