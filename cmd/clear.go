package cmd

import (
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every proxy and the port table",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	n, err := service().Clear(cmd.Context())
	if err != nil {
		if n > 0 {
			logWarning("Port table removed, but some of the %d proxies' rules could not be deleted", n)
		}
		return err
	}

	if n == 0 {
		logInfo("No proxies to clear")
		return nil
	}

	logSuccess("Cleared %d proxies", n)
	return nil
}
