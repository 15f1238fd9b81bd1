package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CristiGvl/picoDiskMon/internal/render"
)

var sampleJSON bool

var sampleCmd = &cobra.Command{
	Use:   "sample <device>",
	Short: "Take one capacity and I/O snapshot of a device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := newSampler().Sample(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if sampleJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		fmt.Fprintln(out, render.Snapshot(snap))
		return nil
	},
}

func init() {
	sampleCmd.Flags().BoolVar(&sampleJSON, "json", false, "Print JSON instead of text")
}
