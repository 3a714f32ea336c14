package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/sshproxy-ctl/internal/app"
	"github.com/firefly-engineering/sshproxy-ctl/internal/monitor"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Periodically check firewall rules",
	Long: `Run health checks on an interval until interrupted.

Entries with missing rules are logged and written to the audit log.
With --repair, missing rules are inserted again.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

var (
	monitorInterval time.Duration
	monitorRepair   bool
)

func init() {
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 30*time.Second, "Time between checks")
	monitorCmd.Flags().BoolVar(&monitorRepair, "repair", false, "Re-insert missing rules")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if monitorInterval <= 0 {
		monitorInterval = 30 * time.Second
	}

	m := monitor.New(monitorInterval, service(),
		monitor.WithAutoRepair(monitorRepair),
		monitor.WithAuditLogger(app.Default.Audit),
	)

	logInfo("Monitoring proxies every %s (Ctrl-C to stop)", monitorInterval)
	if err := m.Run(cmd.Context()); err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return err
	}
	return nil
}
