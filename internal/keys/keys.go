package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the desk.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh of every feed
	Refresh key.Binding

	// Panes
	NextPane   key.Binding
	ToggleKind key.Binding

	// Bell actions
	MarkRead    key.Binding
	MarkAllRead key.Binding
	Dismiss     key.Binding

	// Banner actions
	DismissAlerts    key.Binding
	DismissReminders key.Binding

	// Ticket actions
	NewTicket  key.Binding
	EditTicket key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "bell/tickets"),
		),
		ToggleKind: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "sms/voice"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "mark read"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "mark all read"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dismiss"),
		),
		DismissAlerts: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dismiss alerts"),
		),
		DismissReminders: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "dismiss reminders"),
		),
		NewTicket: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new ticket"),
		),
		EditTicket: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit/assign ticket"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.MarkRead, k.Dismiss,
		k.NewTicket, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Back, k.Quit},
		{k.NextPane, k.ToggleKind, k.Refresh, k.Help},
		{k.MarkRead, k.MarkAllRead, k.Dismiss},
		{k.DismissAlerts, k.DismissReminders, k.NewTicket, k.EditTicket},
	}
}
