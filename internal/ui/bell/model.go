// Package bell renders the merged notification feed and turns key presses
// into read and dismiss requests.
package bell

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/noc-desk/internal/keys"
	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/theme"
)

// MarkReadMsg asks for one entry to be marked read.
type MarkReadMsg struct{ ID string }

// MarkAllReadMsg asks for every shown entry to be marked read.
type MarkAllReadMsg struct{}

// DismissMsg asks for one entry to be removed from the feed.
type DismissMsg struct{ ID string }

// Model is the bell pane.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a bell pane. now is used for relative timestamps; nil means
// time.Now.
func New(k *keys.KeyMap, now func() time.Time, width, height int) Model {
	if now == nil {
		now = time.Now
	}
	l := list.New([]list.Item{}, ItemDelegate{now: now}, width, height)
	l.Title = "Notifications"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{list: l, keys: k, width: width, height: height}
}

// SetItems replaces the shown entries, keeping the cursor in range.
func (m *Model) SetItems(items []model.NotificationItem, isRead func(id string) bool) tea.Cmd {
	out := make([]list.Item, len(items))
	for i, n := range items {
		out[i] = Item{N: n, Read: isRead(n.ID)}
	}
	return m.list.SetItems(out)
}

// Len returns the number of shown entries.
func (m Model) Len() int { return len(m.list.Items()) }

// Selected returns the entry under the cursor.
func (m Model) Selected() (model.NotificationItem, bool) {
	it, ok := m.list.SelectedItem().(Item)
	return it.N, ok
}

// Update handles key presses while the pane has focus.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.MarkRead):
			if n, ok := m.Selected(); ok {
				return m, func() tea.Msg { return MarkReadMsg{ID: n.ID} }
			}
			return m, nil
		case key.Matches(km, m.keys.MarkAllRead):
			return m, func() tea.Msg { return MarkAllReadMsg{} }
		case key.Matches(km, m.keys.Dismiss):
			if n, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DismissMsg{ID: n.ID} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the pane.
func (m Model) View() string {
	if m.Len() == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notifications.")
	}
	return m.list.View()
}

// SetSize updates the pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
