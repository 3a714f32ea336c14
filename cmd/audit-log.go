package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/sshproxy-ctl/internal/app"
)

var auditLogCmd = &cobra.Command{
	Use:   "audit-log",
	Short: "Display the audit trail of table changes",
	Args:  cobra.NoArgs,
	RunE:  runAuditLog,
}

var (
	auditLogAddress string
	auditLogRaw     bool
)

func init() {
	auditLogCmd.Flags().StringVarP(&auditLogAddress, "address", "a", "", "Only show events for this address")
	auditLogCmd.Flags().BoolVar(&auditLogRaw, "raw", false, "Output events as JSON lines")
	rootCmd.AddCommand(auditLogCmd)
}

func runAuditLog(cmd *cobra.Command, args []string) error {
	events, err := app.Default.Audit.Events(auditLogAddress)
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}

	if len(events) == 0 {
		logInfo("No events found")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, e := range events {
		if auditLogRaw {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(out, string(data))
			continue
		}

		ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
		target := e.Address
		if e.Port != 0 {
			target = fmt.Sprintf("%s:%d", e.Address, e.Port)
		}
		if e.Details != "" {
			fmt.Fprintf(out, "[%s] %-6s %s (%s)\n", ts, e.Type, target, e.Details)
		} else {
			fmt.Fprintf(out, "[%s] %-6s %s\n", ts, e.Type, target)
		}
	}

	return nil
}
