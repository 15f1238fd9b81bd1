// Package cmd implements the picodiskmon command line.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/CristiGvl/picoDiskMon/internal/config"
	"github.com/CristiGvl/picoDiskMon/internal/disk"
	"github.com/CristiGvl/picoDiskMon/internal/log"
	"github.com/CristiGvl/picoDiskMon/internal/platform"
)

var (
	cfg    *config.Config
	logger *logrus.Logger

	flagLogLevel  string
	flagLogFormat string
	flagAll       bool
	flagTimeout   time.Duration
	flagInterval  time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "picodiskmon",
	Short:         "Inspect mounted volumes and poll disk capacity and I/O counters",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := platform.ValidateSupport(); err != nil {
			return err
		}

		cfg = config.Load()
		flags := cmd.Flags()
		if flags.Changed("log-level") {
			cfg.LogLevel = flagLogLevel
		}
		if flags.Changed("log-format") {
			cfg.LogFormat = flagLogFormat
		}
		if flags.Changed("all-partitions") {
			cfg.AllPartitions = flagAll
		}
		if flags.Changed("timeout") && flagTimeout > 0 {
			cfg.SampleTimeout = flagTimeout
		}
		if flags.Changed("interval") && flagInterval > 0 {
			cfg.Interval = flagInterval
		}

		var err error
		logger, err = log.New(cfg.LogLevel, cfg.LogFormat)
		return err
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	pf.BoolVar(&flagAll, "all-partitions", false, "Include pseudo filesystems when enumerating partitions")
	pf.DurationVar(&flagTimeout, "timeout", config.DefaultSampleTimeout, "Timeout for a single disk sample")
	pf.DurationVar(&flagInterval, "interval", config.DefaultInterval, "Polling interval")

	rootCmd.AddCommand(listCmd, sampleCmd, serveCmd, watchCmd)
}

// newSampler wires the host backend, enumerator and sampler from cfg
func newSampler() *disk.Sampler {
	enum := disk.NewEnumerator(disk.NewHost(), cfg.AllPartitions, logger)
	return disk.NewSampler(enum, cfg.SampleTimeout)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
