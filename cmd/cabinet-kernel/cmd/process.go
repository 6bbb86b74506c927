package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/cabinet-platform/kernel/internal/adapter/inbound/stdio"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process one command envelope from stdin",
	Long: `Read one command envelope from stdin, run it through the pipeline,
and write exactly one canonical-JSON envelope (result or error) to stdout
with no trailing newline.

Example:
  cabinet-kernel process < request.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(false)
		if err != nil {
			return err
		}
		defer rt.close()

		ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
		defer stop()

		transport := stdio.NewTransport(rt.kernel, os.Stdin, os.Stdout)
		return transport.ProcessOne(ctx)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
}
