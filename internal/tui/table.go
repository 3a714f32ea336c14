package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/firefly-engineering/sshproxy-ctl/internal/port"
	"github.com/firefly-engineering/sshproxy-ctl/internal/rules"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tablePortStyle   = tableCellStyle.Foreground(lipgloss.Color("42"))
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// RenderTable renders the allocation table with one row per entry.
func RenderTable(entries []port.Entry, namespace string) string {
	var sb strings.Builder

	title := "SSH proxy table"
	if namespace != "" {
		title += " (namespace " + namespace + ")"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")

	if len(entries) == 0 {
		sb.WriteString("No proxies allocated.\n")
		sb.WriteString("Create one with: sshproxy-ctl create -a <address>\n")
		return sb.String()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers("ADDRESS", "PORT", "TARGET").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 1:
				return tablePortStyle
			default:
				return tableCellStyle
			}
		})

	for _, e := range entries {
		t.Row(e.Address.String(), strconv.Itoa(e.Port), fmt.Sprintf("%s:%d", e.Address, rules.SSHPort))
	}

	sb.WriteString(t.String())
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(fmt.Sprintf("%d entries", len(entries))))
	sb.WriteString("\n")

	return sb.String()
}
