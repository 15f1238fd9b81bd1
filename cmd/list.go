package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CristiGvl/picoDiskMon/internal/disk"
	"github.com/CristiGvl/picoDiskMon/internal/render"
)

var (
	listAllFS bool
	listJSON  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List mounted volumes that can be sampled",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vols, err := newSampler().Enumerator().ListVolumes(cmd.Context())
		if err != nil {
			return err
		}
		if !listAllFS {
			vols = disk.Selectable(vols)
		}

		out := cmd.OutOrStdout()
		if listJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(vols)
		}

		fmt.Fprintln(out, render.Volumes(vols))
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listAllFS, "all-fs", false, "Also show volumes without a filesystem type")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON instead of a table")
}
