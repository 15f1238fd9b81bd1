// Package ui is the interactive terminal driver: pick a device, then watch it.
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CristiGvl/picoDiskMon/internal/poller"
)

// Run shows the watch UI until the user quits. Poller updates are forwarded
// into the program; the poller is stopped on exit.
func Run(ctx context.Context, volumes VolumeLister, p *poller.Poller, device string) error {
	app := NewApp(ctx, volumes, p, device)
	prog := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	p.Subscribe(func(st poller.Status) {
		prog.Send(StatusMsg(st))
	})
	defer p.Stop()

	_, err := prog.Run()
	return err
}
