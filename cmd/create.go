package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/sshproxy-ctl/internal/app"
	"github.com/firefly-engineering/sshproxy-ctl/internal/errors"
	"github.com/firefly-engineering/sshproxy-ctl/internal/logging"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Allocate a port for an address and install its proxy rules",
	Long: `Allocates the lowest free port at or above start_port for the address,
records it in the port table and installs the firewall rules. The assigned
port is printed on stdout.

With --port, nothing is allocated: the table must already hold exactly that
address and port, and only the firewall rules are installed.`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

var (
	createAddress string
	createPort    int
)

func init() {
	createCmd.Flags().StringVarP(&createAddress, "address", "a", "", "Internal host address (required)")
	createCmd.Flags().IntVarP(&createPort, "port", "p", 0, "Port already recorded for the address")
	_ = createCmd.MarkFlagRequired("address")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	logging.Debug("creating proxy", "address", createAddress, "port", createPort)

	// 0 selects the automatic path in the service, so an explicit 0 is
	// rejected here.
	if cmd.Flags().Changed("port") && createPort <= 0 {
		return errors.InvalidPort(createPort, app.Default.HostConfig.MinPort)
	}

	p, err := service().Create(cmd.Context(), createAddress, createPort)
	if err != nil {
		if p != 0 {
			logWarning("Port %d is recorded for %s but its rules were not fully applied", p, createAddress)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), p)
	return nil
}
