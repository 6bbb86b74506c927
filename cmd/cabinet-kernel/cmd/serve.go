package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/cabinet-platform/kernel/internal/adapter/inbound/metricshttp"
	"github.com/cabinet-platform/kernel/internal/adapter/inbound/stdio"
)

// shutdownGrace bounds the metrics listener drain on exit.
const shutdownGrace = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Process one envelope per stdin line until EOF",
	Long: `Run the kernel as a long-lived worker: one command envelope per
stdin line, one response envelope per stdout line, until EOF or signal.

When metrics are enabled in config, /metrics and /healthz are served on the
configured address for the lifetime of the loop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(true)
		if err != nil {
			return err
		}
		defer rt.close()

		ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
		defer stop()

		if rt.cfg.Metrics.Enabled {
			server := metricshttp.NewServer(rt.cfg.Metrics.Addr, rt.registry, rt.logger)
			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					rt.logger.Warn("metrics shutdown failed", "error", err)
				}
				if err := <-errCh; err != nil {
					rt.logger.Warn("metrics listener failed", "error", err)
				}
			}()
		}

		transport := stdio.NewTransport(rt.kernel, os.Stdin, os.Stdout)
		return transport.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
