// Package tickets renders the SMS and voice ticket lists grouped by
// calendar day, with the dashboard counts on top.
package tickets

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/noc-desk/internal/keys"
	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/report"
	"github.com/nhle/noc-desk/internal/theme"
	"github.com/nhle/noc-desk/internal/ticketsort"
)

// DayItem is a calendar-day header row.
type DayItem struct{ Label string }

// FilterValue returns the string used for fuzzy filtering.
func (d DayItem) FilterValue() string { return d.Label }

// TicketItem is one ticket row.
type TicketItem struct{ T model.Ticket }

// FilterValue returns the string used for fuzzy filtering.
func (i TicketItem) FilterValue() string { return i.T.TicketNumber + " " + i.T.Customer }

// Rows flattens tickets into day headers followed by that day's tickets in
// display order.
func Rows(sorter ticketsort.Sorter, tickets []model.Ticket) []list.Item {
	var rows []list.Item
	for _, g := range sorter.GroupByCalendarDay(tickets) {
		rows = append(rows, DayItem{Label: g.Label})
		for _, t := range g.Tickets {
			rows = append(rows, TicketItem{T: t})
		}
	}
	return rows
}

type delegate struct{}

func (delegate) Height() int                             { return 1 }
func (delegate) Spacing() int                            { return 0 }
func (delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	switch it := item.(type) {
	case DayItem:
		fmt.Fprint(w, lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGray).Render(it.Label))
	case TicketItem:
		t := it.T
		who := t.AssignedTo
		if who == "" {
			who = "-"
		}
		line := fmt.Sprintf("%s %s %s %s/%s %s vol %s",
			t.TicketNumber,
			theme.PriorityStyle(t.Priority).Render(t.Priority),
			theme.StatusStyle(t.Status).Render(t.Status),
			t.CustomerID, t.CustomerTrunk,
			who,
			t.Volume,
		)
		if index == m.Index() {
			line = "> " + line
		} else {
			line = "  " + line
		}
		fmt.Fprint(w, line)
	}
}

// Model is the tickets pane.
type Model struct {
	list    list.Model
	keys    *keys.KeyMap
	sorter  ticketsort.Sorter
	kind    model.TicketKind
	byKind  map[model.TicketKind][]model.Ticket
	summary report.Summary
	width   int
	height  int
}

// New creates the pane showing SMS tickets first.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, delegate{}, width, max(height-1, 1))
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	return Model{
		list:   l,
		keys:   k,
		sorter: ticketsort.Default,
		kind:   model.KindSMS,
		byKind: make(map[model.TicketKind][]model.Ticket),
		width:  width,
		height: height,
	}
}

// Kind returns the ticket kind being shown.
func (m Model) Kind() model.TicketKind { return m.kind }

// Selected returns the highlighted ticket. Day headers select nothing.
func (m Model) Selected() (model.Ticket, bool) {
	it, ok := m.list.SelectedItem().(TicketItem)
	if !ok {
		return model.Ticket{}, false
	}
	return it.T, true
}

// SetTickets replaces the lists for both kinds.
func (m *Model) SetTickets(sms, voice []model.Ticket) tea.Cmd {
	m.byKind[model.KindSMS] = sms
	m.byKind[model.KindVoice] = voice
	m.summary = report.Summarize(sms, voice)
	return m.list.SetItems(Rows(m.sorter, m.byKind[m.kind]))
}

// Update handles key presses while the pane has focus.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.ToggleKind) {
		if m.kind == model.KindSMS {
			m.kind = model.KindVoice
		} else {
			m.kind = model.KindSMS
		}
		m.list.ResetSelected()
		return m, m.list.SetItems(Rows(m.sorter, m.byKind[m.kind]))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SummaryLine is the one-line count strip above the list.
func (m Model) SummaryLine() string {
	s := m.summary
	parts := []string{
		fmt.Sprintf("%s tickets", strings.ToUpper(string(m.kind))),
		fmt.Sprintf("sms %d", s.ByKind[model.KindSMS]),
		fmt.Sprintf("voice %d", s.ByKind[model.KindVoice]),
		fmt.Sprintf("unassigned %d", report.Get(s.ByStatus, model.StatusUnassigned)),
		fmt.Sprintf("urgent %d", report.Get(s.ByPriority, model.PriorityUrgent)),
	}
	return strings.Join(parts, " | ")
}

// View renders the pane.
func (m Model) View() string {
	header := theme.HeaderStyle.Render(m.SummaryLine())
	if len(m.list.Items()) == 0 {
		empty := lipgloss.NewStyle().
			Width(m.width).
			Height(max(m.height-1, 1)).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No tickets.")
		return lipgloss.JoinVertical(lipgloss.Left, header, empty)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View())
}

// SetSize updates the pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(height-1, 1))
}
