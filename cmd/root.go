package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/sshproxy-ctl/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
	configPath string
	namespace  string
	dryRun     bool
)

var rootCmd = &cobra.Command{
	Use:   "sshproxy-ctl",
	Short: "SSH port proxy allocation CLI",
	Long: `sshproxy-ctl gives hosts on an internal network an externally reachable
SSH port.

Each proxy is:
  - A line in the port allocation table (address and port)
  - A DNAT rule forwarding the port to address:22
  - FORWARD and MASQUERADE rules for traffic from the address

Ports are assigned from start_port upwards, reusing the lowest free port.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose, jsonOutput, os.Stderr)
		logging.SetUserOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
		return initApp(cmd)
	},
}

// Execute runs the root command, canceling its context on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $SSHPROXY_CONFIG or /etc/sshproxy/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&namespace, "namespace", "n", "", "Network namespace to apply firewall rules in")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Print firewall commands instead of running them")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)
