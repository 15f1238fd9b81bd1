// Package poller drives periodic sampling of one selected device.
package poller

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CristiGvl/picoDiskMon/internal/disk"
)

// DefaultInterval is the polling cadence used when none is given
const DefaultInterval = time.Second

// ErrNoDevice is returned by Start when no device was selected
var ErrNoDevice = errors.New("no device selected")

// Sampler is the subset of disk.Sampler the poller depends on
type Sampler interface {
	Sample(ctx context.Context, deviceID string) (*disk.Snapshot, error)
}

// State is the polling state owned by the poller
type State struct {
	Active     bool   `json:"active"`
	IntervalMs int64  `json:"interval_ms"`
	Device     string `json:"device,omitempty"`
}

// Interval returns the polling interval as a duration
func (s State) Interval() time.Duration {
	return time.Duration(s.IntervalMs) * time.Millisecond
}

// Status is the poller state plus the most recent result
type Status struct {
	State
	Snapshot  *disk.Snapshot `json:"snapshot,omitempty"`
	Stale     bool           `json:"stale"`
	LastError string         `json:"last_error,omitempty"`
	UpdatedAt time.Time      `json:"updated_at,omitempty"`
}

// Poller samples a device immediately on Start and then once per interval.
// A tick that fires while the previous sample is still running is skipped.
type Poller struct {
	sampler  Sampler
	interval time.Duration
	log      *logrus.Logger

	// ctl serializes Start and Stop
	ctl sync.Mutex

	mu        sync.Mutex
	state     State
	gen       uint64
	last      *disk.Snapshot
	stale     bool
	lastErr   error
	updatedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
	subs      []func(Status)
}

// New creates an idle poller. A non-positive interval selects DefaultInterval.
func New(sampler Sampler, interval time.Duration, log *logrus.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}
	return &Poller{
		sampler:  sampler,
		interval: interval,
		log:      log,
		state:    State{IntervalMs: interval.Milliseconds()},
	}
}

// Subscribe registers fn to receive the status after every completed sample
func (p *Poller) Subscribe(fn func(Status)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

// Start begins polling device. If the poller is already running it is
// restarted with the new device and interval. A non-positive interval keeps
// the poller's default.
func (p *Poller) Start(ctx context.Context, device string, interval time.Duration) error {
	if device == "" {
		return ErrNoDevice
	}
	if interval <= 0 {
		interval = p.interval
	}

	p.ctl.Lock()
	defer p.ctl.Unlock()

	p.stop()

	p.mu.Lock()
	if p.state.Device != device {
		p.last = nil
		p.stale = false
		p.lastErr = nil
		p.updatedAt = time.Time{}
	}
	p.gen++
	gen := p.gen
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.state = State{Active: true, IntervalMs: interval.Milliseconds(), Device: device}
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{
		"device":   device,
		"interval": interval,
	}).Info("Polling started")

	go p.run(runCtx, gen, device, interval, done)
	return nil
}

// Stop returns the poller to idle and waits for any in-flight sample.
// The last snapshot is kept.
func (p *Poller) Stop() {
	p.ctl.Lock()
	defer p.ctl.Unlock()
	p.stop()
}

func (p *Poller) stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	wasActive := p.state.Active
	p.cancel, p.done = nil, nil
	p.state.Active = false
	p.gen++
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if wasActive {
		p.log.WithField("device", p.Status().Device).Info("Polling stopped")
	}
}

// Status returns a copy of the current state and last result
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusLocked()
}

func (p *Poller) statusLocked() Status {
	st := Status{
		State:     p.state,
		Stale:     p.stale,
		UpdatedAt: p.updatedAt,
	}
	if p.last != nil {
		snap := *p.last
		st.Snapshot = &snap
	}
	if p.lastErr != nil {
		st.LastError = p.lastErr.Error()
	}
	return st
}

func (p *Poller) run(ctx context.Context, gen uint64, device string, interval time.Duration, done chan struct{}) {
	var (
		wg       sync.WaitGroup
		inFlight atomic.Bool
	)
	defer close(done)
	defer wg.Wait()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fire := func() {
		if !inFlight.CompareAndSwap(false, true) {
			p.log.WithField("device", device).Debug("Previous sample still running, skipping tick")
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer inFlight.Store(false)
			p.tick(ctx, gen, device)
		}()
	}

	fire()
	for {
		select {
		case <-ticker.C:
			fire()
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) tick(ctx context.Context, gen uint64, device string) {
	snap, err := p.sampler.Sample(ctx, device)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	if err != nil {
		p.stale = p.last != nil
		p.lastErr = err
	} else {
		p.last = snap
		p.stale = false
		p.lastErr = nil
		p.updatedAt = snap.Timestamp
	}
	st := p.statusLocked()
	subs := slices.Clone(p.subs)
	p.mu.Unlock()

	if err != nil {
		p.log.WithFields(logrus.Fields{
			"device": device,
			"error":  err,
		}).Warn("Sample failed, keeping last snapshot")
	} else {
		p.log.WithFields(logrus.Fields{
			"device":        device,
			"usage_percent": snap.UsedPercent,
		}).Debug("Sampled device")
	}

	for _, fn := range subs {
		fn(st)
	}
}
