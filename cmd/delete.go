package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/sshproxy-ctl/internal/app"
	"github.com/firefly-engineering/sshproxy-ctl/internal/errors"
	"github.com/firefly-engineering/sshproxy-ctl/internal/logging"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Release an address's port and remove its proxy rules",
	Long: `Removes the address from the port table and deletes the firewall rules
for the port it held.

With --port, the rules for that port are removed and the table is left as
is.`,
	Args: cobra.NoArgs,
	RunE: runDelete,
}

var (
	deleteAddress string
	deletePort    int
)

func init() {
	deleteCmd.Flags().StringVarP(&deleteAddress, "address", "a", "", "Internal host address (required)")
	deleteCmd.Flags().IntVarP(&deletePort, "port", "p", 0, "Remove rules for this port without touching the table")
	_ = deleteCmd.MarkFlagRequired("address")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	logging.Debug("deleting proxy", "address", deleteAddress, "port", deletePort)

	// 0 selects the automatic path in the service, so an explicit 0 is
	// rejected here.
	if cmd.Flags().Changed("port") && deletePort <= 0 {
		return errors.InvalidPort(deletePort, app.Default.HostConfig.MinPort)
	}

	p, err := service().Delete(cmd.Context(), deleteAddress, deletePort)
	if err != nil {
		return err
	}

	if deletePort != 0 {
		logWarning("Table entry for %s was not changed", deleteAddress)
	}
	logSuccess("Removed proxy %s on port %d", deleteAddress, p)
	return nil
}
