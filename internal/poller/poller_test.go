package poller

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CristiGvl/picoDiskMon/internal/disk"
)

type fakeSampler struct {
	mu      sync.Mutex
	calls   int32
	fail    bool
	delay   time.Duration
	running int32
	overlap int32
}

func (f *fakeSampler) Sample(ctx context.Context, deviceID string) (*disk.Snapshot, error) {
	if atomic.AddInt32(&f.running, 1) > 1 {
		atomic.StoreInt32(&f.overlap, 1)
	}
	defer atomic.AddInt32(&f.running, -1)

	n := atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("sample %s: %w", deviceID, disk.ErrNotFound)
	}

	return &disk.Snapshot{
		Volume:      disk.Volume{Device: deviceID, Mountpoint: "/", Filesystem: "ext4"},
		IOCounters:  disk.IOCounters{ReadCount: uint64(n)},
		UsedPercent: 40,
		Timestamp:   time.Now(),
	}, nil
}

func (f *fakeSampler) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func TestPollerSamplesImmediately(t *testing.T) {
	s := &fakeSampler{}
	p := New(s, time.Hour, nil)
	defer p.Stop()

	assert.False(t, p.Status().Active)
	require.NoError(t, p.Start(context.Background(), "/dev/sda1", 0))

	require.Eventually(t, func() bool {
		return p.Status().Snapshot != nil
	}, time.Second, 5*time.Millisecond)

	st := p.Status()
	assert.True(t, st.Active)
	assert.Equal(t, "/dev/sda1", st.Device)
	assert.Equal(t, time.Hour, st.Interval())
	assert.False(t, st.Stale)
	assert.Equal(t, int32(1), atomic.LoadInt32(&s.calls))
}

func TestPollerTicks(t *testing.T) {
	s := &fakeSampler{}
	p := New(s, time.Hour, nil)
	defer p.Stop()

	require.NoError(t, p.Start(context.Background(), "/dev/sda1", 10*time.Millisecond))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&s.calls) >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestPollerKeepsLastSnapshotOnError(t *testing.T) {
	s := &fakeSampler{}
	p := New(s, 10*time.Millisecond, nil)
	defer p.Stop()

	require.NoError(t, p.Start(context.Background(), "/dev/sda1", 0))
	require.Eventually(t, func() bool {
		return p.Status().Snapshot != nil
	}, time.Second, 5*time.Millisecond)

	s.setFail(true)
	require.Eventually(t, func() bool {
		return p.Status().Stale
	}, time.Second, 5*time.Millisecond)

	st := p.Status()
	require.NotNil(t, st.Snapshot)
	assert.Equal(t, "/dev/sda1", st.Snapshot.Device)
	assert.Contains(t, st.LastError, "device not found")

	s.setFail(false)
	require.Eventually(t, func() bool {
		return !p.Status().Stale
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, p.Status().LastError)
}

func TestPollerErrorWithoutSnapshotIsNotStale(t *testing.T) {
	s := &fakeSampler{fail: true}
	p := New(s, time.Hour, nil)
	defer p.Stop()

	require.NoError(t, p.Start(context.Background(), "/dev/gone", 0))
	require.Eventually(t, func() bool {
		return p.Status().LastError != ""
	}, time.Second, 5*time.Millisecond)

	st := p.Status()
	assert.Nil(t, st.Snapshot)
	assert.False(t, st.Stale)
}

func TestPollerStop(t *testing.T) {
	s := &fakeSampler{}
	p := New(s, 5*time.Millisecond, nil)

	require.NoError(t, p.Start(context.Background(), "/dev/sda1", 0))
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&s.calls) >= 2
	}, time.Second, time.Millisecond)

	p.Stop()
	st := p.Status()
	assert.False(t, st.Active)
	assert.NotNil(t, st.Snapshot)

	calls := atomic.LoadInt32(&s.calls)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, atomic.LoadInt32(&s.calls))

	p.Stop()
}

func TestPollerSkipsOverlappingTicks(t *testing.T) {
	s := &fakeSampler{delay: 40 * time.Millisecond}
	p := New(s, 5*time.Millisecond, nil)

	require.NoError(t, p.Start(context.Background(), "/dev/sda1", 0))
	time.Sleep(150 * time.Millisecond)
	p.Stop()

	assert.Equal(t, int32(0), atomic.LoadInt32(&s.overlap))
	assert.LessOrEqual(t, atomic.LoadInt32(&s.calls), int32(6))
}

func TestPollerRetargetClearsSnapshot(t *testing.T) {
	s := &fakeSampler{}
	p := New(s, time.Hour, nil)
	defer p.Stop()

	require.NoError(t, p.Start(context.Background(), "/dev/sda1", 0))
	require.Eventually(t, func() bool {
		return p.Status().Snapshot != nil
	}, time.Second, 5*time.Millisecond)

	s.setFail(true)
	require.NoError(t, p.Start(context.Background(), "/dev/sdb1", 0))
	require.Eventually(t, func() bool {
		return p.Status().LastError != ""
	}, time.Second, 5*time.Millisecond)

	st := p.Status()
	assert.Equal(t, "/dev/sdb1", st.Device)
	assert.Nil(t, st.Snapshot)
}

func TestPollerStartRequiresDevice(t *testing.T) {
	p := New(&fakeSampler{}, 0, nil)
	assert.ErrorIs(t, p.Start(context.Background(), "", 0), ErrNoDevice)
	assert.Equal(t, DefaultInterval, p.Status().Interval())
}

func TestPollerSubscribe(t *testing.T) {
	s := &fakeSampler{}
	p := New(s, time.Hour, nil)
	defer p.Stop()

	got := make(chan Status, 1)
	p.Subscribe(func(st Status) {
		select {
		case got <- st:
		default:
		}
	})

	require.NoError(t, p.Start(context.Background(), "/dev/sda1", 0))

	select {
	case st := <-got:
		require.NotNil(t, st.Snapshot)
		assert.Equal(t, 40.0, st.Snapshot.UsedPercent)
	case <-time.After(time.Second):
		t.Fatal("subscriber was not called")
	}
}

func TestPollerSubscribeFromCallback(t *testing.T) {
	s := &fakeSampler{}
	p := New(s, 20*time.Millisecond, nil)
	defer p.Stop()

	var first, second int32
	var once sync.Once
	p.Subscribe(func(Status) {
		atomic.AddInt32(&first, 1)
		once.Do(func() {
			p.Subscribe(func(Status) { atomic.AddInt32(&second, 1) })
		})
	})

	require.NoError(t, p.Start(context.Background(), "/dev/sda1", 0))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&second) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Greater(t, atomic.LoadInt32(&first), atomic.LoadInt32(&second))
}
