package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/firefly-engineering/sshproxy-ctl/internal/address"
	"github.com/firefly-engineering/sshproxy-ctl/internal/port"
)

func entry(addr string, p int) port.Entry {
	return port.Entry{Address: address.MustParse(addr), Port: p}
}

func TestEntryItemMethods(t *testing.T) {
	item := entryItem{entry: entry("10.0.0.5", 3100)}

	t.Run("Title", func(t *testing.T) {
		if got := item.Title(); got != "10.0.0.5" {
			t.Errorf("Title() = %q, want %q", got, "10.0.0.5")
		}
	})

	t.Run("FilterValue", func(t *testing.T) {
		if got := item.FilterValue(); got != "10.0.0.5" {
			t.Errorf("FilterValue() = %q, want %q", got, "10.0.0.5")
		}
	})

	t.Run("Description", func(t *testing.T) {
		desc := item.Description()
		if !strings.Contains(desc, ":3100") {
			t.Error("Description should contain the external port")
		}
		if !strings.Contains(desc, "10.0.0.5:22") {
			t.Error("Description should contain the SSH target")
		}
	})
}

func TestModelKeyHandling(t *testing.T) {
	entries := []port.Entry{entry("10.0.0.5", 3100), entry("10.0.0.6", 3101)}

	t.Run("quit with q", func(t *testing.T) {
		m := NewPicker(entries, "")
		newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		model := newModel.(Model)

		if model.result.Action != ActionQuit {
			t.Errorf("Action = %v, want ActionQuit", model.result.Action)
		}
		if !model.quitting {
			t.Error("Model should be quitting")
		}
		if cmd == nil {
			t.Error("Should return tea.Quit command")
		}
	})

	t.Run("quit with esc", func(t *testing.T) {
		m := NewPicker(entries, "")
		newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		model := newModel.(Model)

		if model.result.Action != ActionQuit {
			t.Errorf("Action = %v, want ActionQuit", model.result.Action)
		}
	})

	t.Run("delete with d selects first entry", func(t *testing.T) {
		m := NewPicker(entries, "")
		newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
		model := newModel.(Model)

		if model.result.Action != ActionDelete {
			t.Fatalf("Action = %v, want ActionDelete", model.result.Action)
		}
		if model.result.Entry == nil || model.result.Entry.Port != 3100 {
			t.Errorf("Entry = %+v, want port 3100", model.result.Entry)
		}
	})

	t.Run("enter shows selection", func(t *testing.T) {
		m := NewPicker(entries, "")
		newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		model := newModel.(Model)

		if model.result.Action != ActionShow {
			t.Errorf("Action = %v, want ActionShow", model.result.Action)
		}
	})

	t.Run("window size update", func(t *testing.T) {
		m := NewPicker(entries, "")
		newModel, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
		model := newModel.(Model)

		if model.width != 100 {
			t.Errorf("Width = %d, want 100", model.width)
		}
		if model.height != 50 {
			t.Errorf("Height = %d, want 50", model.height)
		}
		if cmd != nil {
			t.Error("Window size update should not return a command")
		}
	})
}

func TestModelInit(t *testing.T) {
	m := Model{}
	if cmd := m.Init(); cmd != nil {
		t.Error("Init() should return nil")
	}
}

func TestModelView(t *testing.T) {
	entries := []port.Entry{entry("10.0.0.5", 3100)}

	t.Run("normal view contains help", func(t *testing.T) {
		m := NewPicker(entries, "qrouter-1")
		view := m.View()

		if !strings.Contains(view, "[d] Delete") {
			t.Error("View should contain delete help")
		}
		if !strings.Contains(view, "[q] Quit") {
			t.Error("View should contain quit help")
		}
	})

	t.Run("quitting view is empty", func(t *testing.T) {
		m := NewPicker(entries, "")
		m.quitting = true

		if view := m.View(); view != "" {
			t.Errorf("Quitting view should be empty, got %q", view)
		}
	})
}

func TestRunPickerEmpty(t *testing.T) {
	result, err := RunPicker(nil, "")
	if err != nil {
		t.Fatalf("RunPicker with no entries failed: %v", err)
	}

	if result.Action != ActionNone {
		t.Errorf("Empty table should return ActionNone, got %v", result.Action)
	}
}

func TestRenderTable(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		output := RenderTable(nil, "")

		if !strings.Contains(output, "No proxies allocated") {
			t.Error("Should indicate an empty table")
		}
		if !strings.Contains(output, "sshproxy-ctl create") {
			t.Error("Should show how to create a proxy")
		}
	})

	t.Run("with entries", func(t *testing.T) {
		output := RenderTable([]port.Entry{
			entry("10.0.0.5", 3100),
			entry("192.168.1.20", 3101),
		}, "qrouter-1")

		for _, want := range []string{"ADDRESS", "10.0.0.5", "3100", "192.168.1.20:22", "qrouter-1", "2 entries"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
	})
}

func TestActionConstants(t *testing.T) {
	actions := []Action{ActionNone, ActionShow, ActionDelete, ActionQuit}
	seen := make(map[Action]bool)

	for _, a := range actions {
		if seen[a] {
			t.Errorf("Duplicate action value: %v", a)
		}
		seen[a] = true
	}
}
