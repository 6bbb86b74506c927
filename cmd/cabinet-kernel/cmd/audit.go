package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cabinet-platform/kernel/internal/adapter/outbound/auditsqlite"
	"github.com/cabinet-platform/kernel/internal/config"
	"github.com/cabinet-platform/kernel/internal/port/outbound"
)

var (
	auditSince      time.Duration
	auditActor      string
	auditCapability string
	auditEventType  string
	auditResult     string
	auditLimit      int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the SQLite audit mirror",
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print audit events matching the filters",
	Long: `Query the SQLite audit mirror configured at audit.sqlite_path and
print matching events as JSON lines, oldest first.

Examples:
  cabinet-kernel audit query --since 24h --result denied
  cabinet-kernel audit query --actor user-123 --capability storage.listings.create`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.Audit.SQLitePath == "" {
			return fmt.Errorf("audit.sqlite_path is not configured; the query mirror is disabled")
		}

		store, err := auditsqlite.NewSQLiteAuditStore(cfg.Audit.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close()

		query := outbound.AuditQuery{
			ActorID:    auditActor,
			Capability: auditCapability,
			EventType:  auditEventType,
			Result:     auditResult,
			Limit:      auditLimit,
		}
		if auditSince > 0 {
			query.Start = time.Now().UTC().Add(-auditSince)
		}

		events, err := store.Query(context.Background(), query)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		for _, ev := range events {
			if err := enc.Encode(ev); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	auditQueryCmd.Flags().DurationVar(&auditSince, "since", 0, "only events newer than this age, e.g. 24h")
	auditQueryCmd.Flags().StringVar(&auditActor, "actor", "", "filter by actor id")
	auditQueryCmd.Flags().StringVar(&auditCapability, "capability", "", "filter by capability")
	auditQueryCmd.Flags().StringVar(&auditEventType, "type", "", "filter by event type (authorization, routing, execution)")
	auditQueryCmd.Flags().StringVar(&auditResult, "result", "", "filter by result (allowed, denied, success, error)")
	auditQueryCmd.Flags().IntVar(&auditLimit, "limit", 100, "maximum events to print")
	auditCmd.AddCommand(auditQueryCmd)
	rootCmd.AddCommand(auditCmd)
}
