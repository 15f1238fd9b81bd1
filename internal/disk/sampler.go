package disk

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultSampleTimeout bounds a single host query
const DefaultSampleTimeout = 2 * time.Second

// Sampler produces snapshots for a single device
type Sampler struct {
	enum    *Enumerator
	timeout time.Duration
	group   singleflight.Group
	log     *logrus.Logger
	now     func() time.Time
}

// NewSampler creates a sampler that resolves devices through enum.
// A non-positive timeout selects DefaultSampleTimeout.
func NewSampler(enum *Enumerator, timeout time.Duration) *Sampler {
	if timeout <= 0 {
		timeout = DefaultSampleTimeout
	}
	return &Sampler{
		enum:    enum,
		timeout: timeout,
		log:     enum.log,
		now:     time.Now,
	}
}

// Enumerator returns the enumerator the sampler resolves devices with
func (s *Sampler) Enumerator() *Enumerator {
	return s.enum
}

// Sample measures capacity and I/O counters for deviceID. Concurrent calls
// for the same device share one host query. Each caller stops waiting on its
// own ctx; the shared query only ends on the sample timeout.
func (s *Sampler) Sample(ctx context.Context, deviceID string) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ch := s.group.DoChan(deviceID, func() (interface{}, error) {
		qctx, qcancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer qcancel()
		return s.sample(qctx, deviceID)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("sample %s: %w", deviceID, ErrTimeout)
			}
			return nil, res.Err
		}
		snap := *res.Val.(*Snapshot)
		snap.Opts = slices.Clone(snap.Opts)
		return &snap, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("sample %s: %w", deviceID, ErrTimeout)
		}
		return nil, ctx.Err()
	}
}

func (s *Sampler) sample(ctx context.Context, deviceID string) (*Snapshot, error) {
	vols, err := s.enum.partitions(ctx)
	if err != nil {
		return nil, err
	}

	var vol *Volume
	for i := range vols {
		if vols[i].Device == deviceID {
			vol = &vols[i]
			break
		}
	}
	if vol == nil {
		return nil, fmt.Errorf("sample %s: %w", deviceID, ErrNotFound)
	}

	c, err := s.enum.usage(ctx, vol.Mountpoint)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Volume:      *vol,
		IOCounters:  s.counters(ctx, deviceID),
		Total:       c.total,
		Used:        c.used,
		Free:        c.free,
		UsedPercent: c.usedPercent,
		Timestamp:   s.now(),
	}, nil
}

// counters looks up the device in the host's counter table. A missing entry
// yields zero counters.
func (s *Sampler) counters(ctx context.Context, deviceID string) IOCounters {
	table, err := s.enum.host.IOCounters(ctx)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"device": deviceID,
			"error":  err,
		}).Debug("I/O counters unavailable")
	}

	stat, ok := lookupCounters(table, deviceID)
	if !ok {
		return IOCounters{}
	}

	return IOCounters{
		ReadCount:  stat.ReadCount,
		WriteCount: stat.WriteCount,
		ReadBytes:  stat.ReadBytes,
		WriteBytes: stat.WriteBytes,
		ReadTime:   stat.ReadTime,
		WriteTime:  stat.WriteTime,
	}
}

// lookupCounters matches the device id exactly, then by kernel name
// (/dev/sda1 -> sda1), then by device-mapper label (/dev/mapper/vg-root).
func lookupCounters(table map[string]disk.IOCountersStat, deviceID string) (disk.IOCountersStat, bool) {
	if len(table) == 0 {
		return disk.IOCountersStat{}, false
	}

	if stat, ok := table[deviceID]; ok {
		return stat, true
	}

	if !strings.HasPrefix(deviceID, "/dev/") {
		return disk.IOCountersStat{}, false
	}

	if stat, ok := table[strings.TrimPrefix(deviceID, "/dev/")]; ok {
		return stat, true
	}

	if strings.HasPrefix(deviceID, "/dev/mapper/") {
		label := path.Base(deviceID)
		for _, stat := range table {
			if stat.Label == label {
				return stat, true
			}
		}
	}

	return disk.IOCountersStat{}, false
}
