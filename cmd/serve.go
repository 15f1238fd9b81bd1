package cmd

import (
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/CristiGvl/picoDiskMon/api"
	"github.com/CristiGvl/picoDiskMon/internal/config"
	"github.com/CristiGvl/picoDiskMon/internal/metrics"
	"github.com/CristiGvl/picoDiskMon/internal/poller"
)

var (
	serveAddr   string
	serveDevice string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve volumes, samples and the poller over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Address = serveAddr
		}
		if cmd.Flags().Changed("device") {
			cfg.Device = serveDevice
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sampler := newSampler()
		p := poller.New(sampler, cfg.Interval, logger)

		collector := metrics.NewCollector(p)
		p.Subscribe(collector.Observe)

		reg := prometheus.NewRegistry()
		reg.MustRegister(collector, collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		server, err := api.NewServer(sampler, p, reg, logger)
		if err != nil {
			return err
		}

		if cfg.Device != "" {
			if err := p.Start(ctx, cfg.Device, cfg.Interval); err != nil {
				return err
			}
		}

		// Handle graceful shutdown
		go func() {
			<-ctx.Done()
			if err := server.Shutdown(); err != nil {
				logger.WithError(err).Error("Error during shutdown")
			}
		}()

		return server.Start(cfg.Address)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", config.DefaultAddress, "Address to bind the HTTP server to")
	serveCmd.Flags().StringVar(&serveDevice, "device", "", "Start polling this device on startup")
}
