// Package cmd provides the CLI commands for the Cabinet kernel.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cabinet-platform/kernel/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cabinet-kernel",
	Short: "Cabinet Kernel - capability request kernel",
	Long: `Cabinet Kernel mediates every command between untrusted UIs and
backend modules. Each request travels a fixed pipeline: decode, validate,
authorize, route, sandboxed execution, result gating, and audit. All
decisions are deny-by-default.

Quick start:
  1. Lay out the policy files (access, routing, limits, result profiles)
  2. Pipe a command envelope: cabinet-kernel process < request.json

Configuration:
  Config is loaded from cabinet-kernel.yaml in the current directory,
  $HOME/.cabinet-kernel/, or /etc/cabinet-kernel/.

  Environment variables can override config values with the CABINET_KERNEL_
  prefix. Example: CABINET_KERNEL_AUDIT_LOG_FILE=/var/log/kernel/audit.jsonl

Commands:
  process       Process one command envelope from stdin
  serve         Process one envelope per stdin line until EOF
  audit         Query the SQLite audit mirror
  canonicalize  Rewrite JSON in canonical form
  hash-id       Mint deterministic or random platform IDs
  version       Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./cabinet-kernel.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
