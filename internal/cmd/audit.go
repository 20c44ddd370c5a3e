package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xdg/labguard/internal/audit"
	"github.com/xdg/labguard/internal/config"
	"github.com/xdg/labguard/internal/term"
)

var auditFilter struct {
	eventType string
	user      string
	limit     int
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail",
}

var auditShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print audit events",
	Long: `Print audit events, oldest first.

Events are read from the audit database when audit.driver is sqlite and
from the audit log file otherwise.

Event types: SESSION_CREATE, SESSION_REVOKE, AUTHORIZED, DENIED,
COMPLETE, TIMEOUT, REJECTED.`,
	Example: `  labguard audit show --type DENIED
  labguard audit show --user alice --limit 20`,
	Args: cobra.NoArgs,
	RunE: runAuditShow,
}

func init() {
	auditShowCmd.Flags().StringVar(&auditFilter.eventType, "type", "", "only events of this type")
	auditShowCmd.Flags().StringVar(&auditFilter.user, "user", "", "only events for this user")
	auditShowCmd.Flags().IntVarP(&auditFilter.limit, "limit", "n", 0, "only the most recent N events")
	auditCmd.AddCommand(auditShowCmd)
	rootCmd.AddCommand(auditCmd)
}

var auditEventTypes = []audit.EventType{
	audit.EventSessionCreate, audit.EventSessionRevoke, audit.EventAuthorized, audit.EventDenied,
	audit.EventCommandComplete, audit.EventCommandTimeout, audit.EventCommandRejected,
}

func runAuditShow(cmd *cobra.Command, args []string) error {
	f, err := parseAuditFilter()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	configureLogging(cfg)

	events, err := readAudit(cmd.Context(), cfg, f)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		term.Println("No audit events.")
		return nil
	}
	for i := range events {
		term.Println(events[i].Format())
	}
	return nil
}

func parseAuditFilter() (audit.Filter, error) {
	f := audit.Filter{User: auditFilter.user, Limit: auditFilter.limit}
	if f.Limit < 0 {
		return f, fmt.Errorf("--limit must not be negative")
	}
	if auditFilter.eventType != "" {
		t := audit.EventType(strings.ToUpper(auditFilter.eventType))
		known := false
		for _, et := range auditEventTypes {
			if et == t {
				known = true
				break
			}
		}
		if !known {
			return f, fmt.Errorf("unknown event type %q", auditFilter.eventType)
		}
		f.Type = t
	}
	return f, nil
}

// readAudit reads events from the configured audit sink.
func readAudit(ctx context.Context, cfg *config.GlobalConfig, f audit.Filter) ([]audit.Event, error) {
	if cfg.Audit.Driver != config.AuditDriverSQLite {
		return audit.ReadFile(cfg.Audit.File, f)
	}
	store, err := audit.OpenSQLite(cfg.Audit.SQLitePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()
	return store.Query(ctx, f)
}
