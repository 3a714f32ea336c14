package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/sshproxy-ctl/internal/logging"
	"github.com/firefly-engineering/sshproxy-ctl/internal/rules"
	"github.com/firefly-engineering/sshproxy-ctl/internal/tui"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Interactive proxy picker",
	Long: `Opens an interactive TUI listing the port table grouped by subnet.

Use arrow keys or j/k to navigate, / to filter.

Actions:
  Enter  - Show the selected proxy and its firewall rules
  d      - Delete the selected proxy
  q/Esc  - Quit`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

func init() {
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	svc := service()

	logging.Debug("picker mode started")

	entries, err := svc.Entries(cmd.Context())
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		logInfo("No proxies found. Create one with: sshproxy-ctl create -a <address>")
		return nil
	}

	result, err := tui.RunPicker(entries, svc.Namespace())
	if err != nil {
		return fmt.Errorf("picker error: %w", err)
	}

	logging.Debug("picker result", "action", result.Action)

	switch result.Action {
	case tui.ActionShow:
		if result.Entry != nil {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\t%d\n", result.Entry.Address, result.Entry.Port)
			for _, d := range rules.Emit(result.Entry.Address, result.Entry.Port, rules.Create, svc.Namespace()) {
				fmt.Fprintf(out, "  %s\n", d)
			}
		}

	case tui.ActionDelete:
		if result.Entry != nil {
			addr := result.Entry.Address.String()
			p, err := svc.Delete(cmd.Context(), addr, 0)
			if err != nil {
				return err
			}
			logSuccess("Removed proxy %s on port %d", addr, p)
		}

	case tui.ActionQuit, tui.ActionNone:
	}

	return nil
}
