package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Print the port assigned to an address",
	Args:  cobra.NoArgs,
	RunE:  runLookup,
}

var lookupAddress string

func init() {
	lookupCmd.Flags().StringVarP(&lookupAddress, "address", "a", "", "Internal host address (required)")
	_ = lookupCmd.MarkFlagRequired("address")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	e, err := service().Lookup(cmd.Context(), lookupAddress)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), e.Port)
	return nil
}
