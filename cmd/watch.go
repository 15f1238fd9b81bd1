package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/CristiGvl/picoDiskMon/internal/poller"
	"github.com/CristiGvl/picoDiskMon/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch [device]",
	Short: "Pick a device and watch its capacity and I/O counters",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		device := cfg.Device
		if len(args) == 1 {
			device = args[0]
		}

		// the TUI owns the terminal, keep log lines out of it
		logger.SetOutput(io.Discard)

		sampler := newSampler()
		p := poller.New(sampler, cfg.Interval, logger)

		return ui.Run(cmd.Context(), sampler.Enumerator(), p, device)
	},
}
