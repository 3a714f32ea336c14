// Package tui provides terminal user interface components for sshproxy-ctl.
//
// This package uses the Bubble Tea framework for the interactive entry
// picker and lipgloss for the styled table dump.
//
// # Entry Picker
//
// The picker lists allocation table entries grouped by /24 subnet:
//
//	result, err := tui.RunPicker(entries, namespace)
//	switch result.Action {
//	case tui.ActionShow:
//	    // Print result.Entry and its directives
//	case tui.ActionDelete:
//	    // Delete result.Entry
//	case tui.ActionQuit, tui.ActionNone:
//	    // Exit
//	}
//
// # Picker Features
//
//   - Entries grouped by subnet, headers auto-skipped
//   - Keyboard navigation (j/k or arrows) and filtering by address
//   - Quick actions: Enter (show), d (delete), q (quit)
//
// # Table
//
// RenderTable renders the allocation table as a bordered lipgloss table.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
