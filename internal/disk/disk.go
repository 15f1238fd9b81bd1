package disk

import (
	"context"
	"errors"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
)

var (
	// ErrNotFound is returned when the requested device is no longer mounted.
	ErrNotFound = errors.New("device not found")
	// ErrPermissionDenied is returned when the host refuses a capacity query.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrTimeout is returned when a host query outlives the sample timeout.
	ErrTimeout = errors.New("sample timed out")
)

// Volume represents a mounted filesystem
type Volume struct {
	Device     string   `json:"device"`
	Mountpoint string   `json:"mountpoint"`
	Filesystem string   `json:"filesystem"`
	Opts       []string `json:"opts"`
}

// ReadOnly reports whether the volume is mounted read-only
func (v Volume) ReadOnly() bool {
	for _, opt := range v.Opts {
		if opt == "ro" {
			return true
		}
	}
	return false
}

// IOCounters holds cumulative per-device I/O counters since boot.
// ReadTime and WriteTime are in milliseconds.
type IOCounters struct {
	ReadCount  uint64 `json:"read_count"`
	WriteCount uint64 `json:"write_count"`
	ReadBytes  uint64 `json:"read_bytes"`
	WriteBytes uint64 `json:"write_bytes"`
	ReadTime   uint64 `json:"read_time_ms"`
	WriteTime  uint64 `json:"write_time_ms"`
}

// Snapshot is a point-in-time measurement of one volume
type Snapshot struct {
	Volume
	IOCounters

	Total       uint64    `json:"total_bytes"`
	Used        uint64    `json:"used_bytes"`
	Free        uint64    `json:"free_bytes"`
	UsedPercent float64   `json:"usage_percent"`
	Timestamp   time.Time `json:"timestamp"`
}

// Host is the system-information backend queried by the enumerator and sampler
type Host interface {
	Partitions(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	Usage(ctx context.Context, path string) (*disk.UsageStat, error)
	IOCounters(ctx context.Context) (map[string]disk.IOCountersStat, error)
}

// NewHost creates a host backend for the current platform
func NewHost() Host {
	return newPlatformHost()
}

// Selectable drops volumes without a filesystem type, which are not useful
// choices in a device picker.
func Selectable(vols []Volume) []Volume {
	out := make([]Volume, 0, len(vols))
	for _, v := range vols {
		if v.Filesystem == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
