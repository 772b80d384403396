package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/beehive-mcp/beehive-mcp/internal/audit"
	"github.com/beehive-mcp/beehive-mcp/internal/config"
)

var (
	auditLimit int
	auditTool  string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent tool calls from the audit database",
	RunE:  runAudit,
}

func init() {
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "number of calls to show")
	auditCmd.Flags().StringVar(&auditTool, "tool", "", "only show calls to this tool")
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadAll(config.LoadOptions{ConfigPath: configPath, EnvFile: envFile})
	if err != nil {
		return fail("%v", err)
	}
	if cfg.Audit.DBPath == "" {
		return fail("no audit database configured (set audit.db_path or %s)", config.EnvAuditDB)
	}

	store, err := audit.NewStore(cfg.Audit.DBPath)
	if err != nil {
		return fail("%v", err)
	}
	defer func() { _ = store.Close() }()

	events, err := store.Recent(auditTool, auditLimit)
	if err != nil {
		return fail("%v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTOOL\tKIND\tDURATION\tREQUEST\tERROR")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dms\t%s\t%s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Tool, e.Kind, e.DurationMs, e.RequestID, e.Error)
	}
	return w.Flush()
}
