package disk

import (
	"context"

	"github.com/shirou/gopsutil/v3/disk"
)

// psutilHost reads partitions, usage and counters through gopsutil
type psutilHost struct{}

func (h *psutilHost) Partitions(ctx context.Context, all bool) ([]disk.PartitionStat, error) {
	return disk.PartitionsWithContext(ctx, all)
}

func (h *psutilHost) Usage(ctx context.Context, path string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, path)
}

func (h *psutilHost) IOCounters(ctx context.Context) (map[string]disk.IOCountersStat, error) {
	return disk.IOCountersWithContext(ctx)
}

// extend32 widens a raw 32-bit counter that wraps at 2^32, given the last
// widened value for the same counter.
func extend32(last uint64, raw uint32) uint64 {
	v := last&^0xffffffff | uint64(raw)
	if v < last {
		v += 1 << 32
	}
	return v
}
