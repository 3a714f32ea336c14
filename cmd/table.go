package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/sshproxy-ctl/internal/port"
	"github.com/firefly-engineering/sshproxy-ctl/internal/tui"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Show the port allocation table",
	Args:  cobra.NoArgs,
	RunE:  runTable,
}

var tableFormat string

func init() {
	tableCmd.Flags().StringVarP(&tableFormat, "format", "f", "styled", "Output format: styled, plain or json")
	rootCmd.AddCommand(tableCmd)
}

type tableRow struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

func runTable(cmd *cobra.Command, args []string) error {
	svc := service()

	entries, err := svc.Entries(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	switch tableFormat {
	case "styled":
		fmt.Fprint(out, tui.RenderTable(entries, svc.Namespace()))
	case "plain":
		return port.Encode(out, entries)
	case "json":
		rows := make([]tableRow, len(entries))
		for i, e := range entries {
			rows[i] = tableRow{Address: e.Address.String(), Port: e.Port}
		}
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal table: %w", err)
		}
		fmt.Fprintln(out, string(data))
	default:
		return fmt.Errorf("unknown format %q (use styled, plain or json)", tableFormat)
	}

	return nil
}
