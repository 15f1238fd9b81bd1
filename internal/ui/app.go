package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CristiGvl/picoDiskMon/internal/disk"
	"github.com/CristiGvl/picoDiskMon/internal/poller"
	"github.com/CristiGvl/picoDiskMon/internal/render"
)

// VolumeLister lists the volumes offered in the device picker
type VolumeLister interface {
	ListVolumes(ctx context.Context) ([]disk.Volume, error)
}

// Poller is the subset of poller.Poller driven by the UI
type Poller interface {
	Start(ctx context.Context, device string, interval time.Duration) error
	Stop()
	Status() poller.Status
}

type volumesMsg struct {
	vols []disk.Volume
	err  error
}

type statusMsg poller.Status

type startedMsg struct {
	err error
}

type stoppedMsg struct{}

type App struct {
	ctx     context.Context
	volumes VolumeLister
	poller  Poller

	vols     []disk.Volume
	cursor   int
	status   poller.Status
	err      error
	autoPick string

	width         int
	usageProgress progress.Model
}

// NewApp creates the watch UI. If device is not empty polling starts as
// soon as it appears in the volume list.
func NewApp(ctx context.Context, volumes VolumeLister, p Poller, device string) *App {
	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	return &App{
		ctx:           ctx,
		volumes:       volumes,
		poller:        p,
		autoPick:      device,
		usageProgress: prog,
	}
}

// StatusMsg wraps a poller status for delivery through tea.Program.Send
func StatusMsg(st poller.Status) tea.Msg {
	return statusMsg(st)
}

func (a *App) Init() tea.Cmd {
	return a.loadVolumes()
}

func (a *App) loadVolumes() tea.Cmd {
	return func() tea.Msg {
		vols, err := a.volumes.ListVolumes(a.ctx)
		return volumesMsg{vols: disk.Selectable(vols), err: err}
	}
}

// start and stop run as commands so Update never blocks on the poller
func (a *App) start(device string) tea.Cmd {
	return func() tea.Msg {
		return startedMsg{err: a.poller.Start(a.ctx, device, 0)}
	}
}

func (a *App) stop() tea.Cmd {
	return func() tea.Msg {
		a.poller.Stop()
		return stoppedMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.usageProgress.Width = max(10, min(50, a.width-20))
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "up", "k":
			if a.cursor > 0 {
				a.cursor--
			}
		case "down", "j":
			if a.cursor < len(a.vols)-1 {
				a.cursor++
			}
		case "enter", " ":
			if len(a.vols) > 0 {
				return a, a.start(a.vols[a.cursor].Device)
			}
		case "s":
			if a.status.Active {
				return a, a.stop()
			}
		case "r":
			return a, a.loadVolumes()
		}

	case volumesMsg:
		a.err = msg.err
		a.vols = msg.vols
		if a.cursor >= len(a.vols) {
			a.cursor = max(0, len(a.vols)-1)
		}
		if a.autoPick != "" {
			device := a.autoPick
			a.autoPick = ""
			for i, v := range a.vols {
				if v.Device == device {
					a.cursor = i
					return a, a.start(device)
				}
			}
			a.err = fmt.Errorf("device %s: %w", device, disk.ErrNotFound)
		}

	case startedMsg:
		a.err = msg.err
		a.status = a.poller.Status()

	case stoppedMsg:
		a.status = a.poller.Status()

	case statusMsg:
		a.status = poller.Status(msg)
	}

	return a, nil
}

func (a *App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("picoDiskMon"))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Select a device to monitor:"))
	b.WriteString("\n")
	if len(a.vols) == 0 {
		b.WriteString(mutedStyle.Render("  no volumes found"))
		b.WriteString("\n")
	}
	for i, v := range a.vols {
		line := fmt.Sprintf("%s  %s  (%s)", v.Device, v.Mountpoint, v.Filesystem)
		if i == a.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(a.statusView())

	if a.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(a.err.Error()))
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter start • s stop • r refresh • q quit"))

	return boxStyle.Render(b.String())
}

func (a *App) statusView() string {
	st := a.status

	var b strings.Builder
	state := "idle"
	if st.Active {
		state = fmt.Sprintf("polling %s every %s", st.Device, st.Interval())
	}
	b.WriteString(headerStyle.Render("Disk information"))
	b.WriteString(" ")
	b.WriteString(mutedStyle.Render(state))
	b.WriteString("\n")

	if st.Snapshot == nil {
		if st.LastError != "" {
			b.WriteString(errorStyle.Render("no data: " + st.LastError))
		} else {
			b.WriteString(mutedStyle.Render("press enter to start"))
		}
		return b.String()
	}

	b.WriteString(a.usageProgress.ViewAs(st.Snapshot.UsedPercent / 100))
	b.WriteString("\n")
	b.WriteString(render.Snapshot(st.Snapshot))
	if st.Stale {
		b.WriteString("\n")
		b.WriteString(render.Stale(st.LastError))
	}
	return b.String()
}
