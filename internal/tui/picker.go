// Package tui provides terminal user interface components for sshproxy-ctl
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/sshproxy-ctl/internal/port"
	"github.com/firefly-engineering/sshproxy-ctl/internal/rules"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionShow
	ActionDelete
	ActionQuit
)

// PickerResult holds the result of the picker
type PickerResult struct {
	Action Action
	Entry  *port.Entry
}

// entryItem implements list.Item for a table entry
type entryItem struct {
	entry port.Entry
}

func (i entryItem) Title() string {
	return i.entry.Address.String()
}

func (i entryItem) Description() string {
	return fmt.Sprintf("→ :%d  %s:%d", i.entry.Port, i.entry.Address, rules.SSHPort)
}

func (i entryItem) FilterValue() string {
	return i.entry.Address.String()
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Model is the bubbletea model for the entry picker
type Model struct {
	list     list.Model
	result   PickerResult
	quitting bool
	width    int
	height   int
}

// NewPicker creates a picker over the allocation table, grouped by /24.
func NewPicker(entries []port.Entry, namespace string) Model {
	items := buildGroupedItems(entries)

	l := list.New(items, newGroupedDelegate(), 80, 20)
	l.Title = "SSH proxies"
	if namespace != "" {
		l.Title += " [" + namespace + "]"
	}
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("proxy", "proxies")
	l.Styles.Title = titleStyle

	skipHeaders(&l, 1)

	return Model{list: l}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		// Don't handle keys if filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(entryItem); ok {
				e := item.entry
				m.result = PickerResult{Action: ActionShow, Entry: &e}
				m.quitting = true
				return m, tea.Quit
			}

		case "d":
			if item, ok := m.list.SelectedItem().(entryItem); ok {
				e := item.entry
				m.result = PickerResult{Action: ActionDelete, Entry: &e}
				m.quitting = true
				return m, tea.Quit
			}

		case "q", "esc":
			m.result = PickerResult{Action: ActionQuit}
			m.quitting = true
			return m, tea.Quit

		case "up", "k", "down", "j":
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			if isHeaderSelected(&m.list) {
				skipHeaders(&m.list, navigationDirection(msg))
			}
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("[enter] Show  [d] Delete  [/] Filter  [q] Quit")

	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive entry picker
func RunPicker(entries []port.Entry, namespace string) (PickerResult, error) {
	if len(entries) == 0 {
		return PickerResult{Action: ActionNone}, nil
	}

	m := NewPicker(entries, namespace)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}

	return finalModel.(Model).Result(), nil
}
