package disk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/sirupsen/logrus"
)

// Enumerator lists mounted volumes. Every call queries the host again.
type Enumerator struct {
	host          Host
	allPartitions bool
	log           *logrus.Logger
}

// NewEnumerator creates a volume enumerator. allPartitions also reports
// pseudo filesystems such as proc or tmpfs.
func NewEnumerator(host Host, allPartitions bool, log *logrus.Logger) *Enumerator {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}
	return &Enumerator{
		host:          host,
		allPartitions: allPartitions,
		log:           log,
	}
}

// ListVolumes returns the mounted volumes whose capacity can be read.
// Volumes the host refuses to stat are left out rather than failing the call.
func (e *Enumerator) ListVolumes(ctx context.Context) ([]Volume, error) {
	vols, err := e.partitions(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Volume, 0, len(vols))
	for _, v := range vols {
		if _, err := e.usage(ctx, v.Mountpoint); err != nil {
			entry := e.log.WithFields(logrus.Fields{
				"device":     v.Device,
				"mountpoint": v.Mountpoint,
				"error":      err,
			})
			if errors.Is(err, ErrPermissionDenied) {
				entry.Debug("Skipping volume")
			} else {
				entry.Warn("Skipping unreadable volume")
			}
			continue
		}
		out = append(out, v)
	}

	return out, nil
}

// partitions returns every mounted partition without probing capacity
func (e *Enumerator) partitions(ctx context.Context) ([]Volume, error) {
	parts, err := e.host.Partitions(ctx, e.allPartitions)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	vols := make([]Volume, 0, len(parts))
	for _, p := range parts {
		opts := make([]string, len(p.Opts))
		copy(opts, p.Opts)

		vols = append(vols, Volume{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			Filesystem: p.Fstype,
			Opts:       opts,
		})
	}
	return vols, nil
}

// usage reads capacity for a mount point, mapping access errors to ErrPermissionDenied
func (e *Enumerator) usage(ctx context.Context, mountpoint string) (*capacity, error) {
	u, err := e.host.Usage(ctx, mountpoint)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("usage %s: %w", mountpoint, ErrPermissionDenied)
		}
		return nil, fmt.Errorf("usage %s: %w", mountpoint, err)
	}
	if u == nil {
		return nil, fmt.Errorf("usage %s: no data", mountpoint)
	}

	return &capacity{
		total:       u.Total,
		used:        u.Used,
		free:        u.Free,
		usedPercent: u.UsedPercent,
	}, nil
}

type capacity struct {
	total       uint64
	used        uint64
	free        uint64
	usedPercent float64
}
