package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/sshproxy-ctl/internal/errors"
	"github.com/firefly-engineering/sshproxy-ctl/internal/health"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every allocation has its firewall rules",
	Long: `Probe the DNAT, FORWARD and MASQUERADE rules of every table entry.

With --repair, rules found missing are inserted again. The command fails
if any entry is still unhealthy afterwards.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

var checkRepair bool

func init() {
	checkCmd.Flags().BoolVar(&checkRepair, "repair", false, "Re-insert missing rules")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	svc := service()
	ctx := cmd.Context()

	results, err := svc.Check(ctx)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		logInfo("No proxies to check")
		return nil
	}

	unhealthy := 0
	for _, r := range results {
		status := r.Status
		if checkRepair && len(r.Missing) > 0 && r.Status != health.StatusUnknown {
			if err := svc.Repair(ctx, r); err != nil {
				logWarning("Repair of %s failed: %v", r.Entry.Address, err)
			} else {
				status = health.StatusHealthy
				logSuccess("Repaired %d rules for %s", len(r.Missing), r.Entry.Address)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", r.Entry.Address, r.Entry.Port, status)
		if r.Err != nil {
			logWarning("%s: %v", r.Entry.Address, r.Err)
		}
		if status != health.StatusHealthy {
			unhealthy++
		}
	}

	if unhealthy > 0 {
		return errors.New(errors.ExitFirewallError, fmt.Sprintf("%d of %d proxies have missing rules", unhealthy, len(results)))
	}
	return nil
}
