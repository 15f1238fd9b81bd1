package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CristiGvl/picoDiskMon/internal/disk"
	"github.com/CristiGvl/picoDiskMon/internal/poller"
)

type fakeLister struct {
	vols []disk.Volume
}

func (f *fakeLister) ListVolumes(ctx context.Context) ([]disk.Volume, error) {
	return f.vols, nil
}

type fakePoller struct {
	started []string
	stopped int
	status  poller.Status
}

func (f *fakePoller) Start(ctx context.Context, device string, interval time.Duration) error {
	f.started = append(f.started, device)
	f.status.State = poller.State{Active: true, IntervalMs: 1000, Device: device}
	return nil
}

func (f *fakePoller) Stop() {
	f.stopped++
	f.status.Active = false
}

func (f *fakePoller) Status() poller.Status {
	return f.status
}

func newTestApp(device string) (*App, *fakePoller) {
	lister := &fakeLister{vols: []disk.Volume{
		{Device: "/dev/sda1", Mountpoint: "/", Filesystem: "ext4"},
		{Device: "proc", Mountpoint: "/proc"},
		{Device: "/dev/sdb1", Mountpoint: "/data", Filesystem: "xfs"},
	}}
	p := &fakePoller{}
	return NewApp(context.Background(), lister, p, device), p
}

func update(t *testing.T, a *App, msg tea.Msg) tea.Cmd {
	t.Helper()
	_, cmd := a.Update(msg)
	return cmd
}

func TestAppLoadsSelectableVolumes(t *testing.T) {
	a, _ := newTestApp("")

	msg := a.Init()()
	assert.Nil(t, update(t, a, msg))

	require.Len(t, a.vols, 2)
	assert.Equal(t, "/dev/sdb1", a.vols[1].Device)
	assert.Contains(t, a.View(), "press enter to start")
}

func TestAppSelectAndStart(t *testing.T) {
	a, p := newTestApp("")
	update(t, a, a.Init()())

	update(t, a, tea.KeyMsg{Type: tea.KeyDown})
	cmd := update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	update(t, a, cmd())
	assert.Equal(t, []string{"/dev/sdb1"}, p.started)
	assert.True(t, a.status.Active)
	assert.Contains(t, a.View(), "polling /dev/sdb1 every 1s")

	cmd = update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	require.NotNil(t, cmd)
	update(t, a, cmd())
	assert.Equal(t, 1, p.stopped)
	assert.False(t, a.status.Active)
}

func TestAppAutoPick(t *testing.T) {
	a, p := newTestApp("/dev/sdb1")

	cmd := update(t, a, a.Init()())
	require.NotNil(t, cmd)
	update(t, a, cmd())

	assert.Equal(t, 1, a.cursor)
	assert.Equal(t, []string{"/dev/sdb1"}, p.started)
}

func TestAppAutoPickMissing(t *testing.T) {
	a, p := newTestApp("/dev/sdz1")

	assert.Nil(t, update(t, a, a.Init()()))
	assert.Empty(t, p.started)
	assert.ErrorIs(t, a.err, disk.ErrNotFound)
}

func TestAppShowsStaleSnapshot(t *testing.T) {
	a, _ := newTestApp("")
	update(t, a, a.Init()())

	update(t, a, StatusMsg(poller.Status{
		State: poller.State{Active: true, IntervalMs: 1000, Device: "/dev/sda1"},
		Snapshot: &disk.Snapshot{
			Volume:      disk.Volume{Device: "/dev/sda1", Mountpoint: "/", Filesystem: "ext4"},
			Total:       100_000_000_000,
			UsedPercent: 40,
		},
		Stale:     true,
		LastError: "sample /dev/sda1: sample timed out",
	}))

	view := a.View()
	assert.Contains(t, view, "93.13 GB")
	assert.Contains(t, view, "stale")
}

func TestAppQuit(t *testing.T) {
	a, _ := newTestApp("")
	cmd := update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
