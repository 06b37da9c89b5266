package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/noc-desk/internal/desk"
	"github.com/nhle/noc-desk/internal/keys"
	"github.com/nhle/noc-desk/internal/model"
	appsync "github.com/nhle/noc-desk/internal/sync"
	"github.com/nhle/noc-desk/internal/theme"
	"github.com/nhle/noc-desk/internal/ui"
	"github.com/nhle/noc-desk/internal/ui/banner"
	"github.com/nhle/noc-desk/internal/ui/bell"
	helpview "github.com/nhle/noc-desk/internal/ui/help"
	"github.com/nhle/noc-desk/internal/ui/ticketform"
	"github.com/nhle/noc-desk/internal/ui/tickets"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewDashboard ViewState = iota
	ViewForm
	ViewHelp
)

// Pane is the focused half of the dashboard.
type Pane int

const (
	PaneBell Pane = iota
	PaneTickets
)

// bannerTick re-evaluates banner resurfacing between polls.
const bannerTick = 15 * time.Second

type tickMsg time.Time

// refreshMsg asks the panes to re-read the desk after startup.
type refreshMsg struct{}

// Model is the root Bubble Tea model. It routes poll results into the desk
// and redraws the bell, banners and ticket lists from the desk's state.
type Model struct {
	currentView  ViewState
	previousView ViewState
	focus        Pane
	layout       ui.Layout
	desk         *desk.Desk
	poller       *appsync.Poller
	keys         *keys.KeyMap
	bell         bell.Model
	tickets      tickets.Model
	form         ticketform.Model
	helpView     helpview.Model
	now          func() time.Time
	ready        bool

	statusMessage    string
	errorMessage     string
	authErrorMessage string
}

// New creates the root model. now feeds relative timestamps; nil means
// time.Now.
func New(d *desk.Desk, p *appsync.Poller, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	k := keys.DefaultKeyMap()
	return Model{
		currentView: ViewDashboard,
		layout:      ui.NewLayout(80, 24),
		desk:        d,
		poller:      p,
		keys:        k,
		bell:        bell.New(k, now, 32, 20),
		tickets:     tickets.New(k, 48, 20),
		form:        ticketform.New(80, 24),
		helpView:    helpview.New(k, 80, 24),
		now:         now,
	}
}

// Init starts polling and the banner tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.poller.Start(),
		tick(),
		func() tea.Msg { return refreshMsg{} },
	)
}

func tick() tea.Cmd {
	return tea.Tick(bannerTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// refresh copies the desk's state into the panes.
func (m *Model) refresh() tea.Cmd {
	feed := m.desk.Feed()
	return tea.Batch(
		m.bell.SetItems(feed.Items(), feed.IsRead),
		m.tickets.SetTickets(m.desk.Tickets(model.KindSMS), m.desk.Tickets(model.KindVoice)),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.resize()
		return m.updateActiveView(msg)

	case tickMsg:
		m.resize()
		return m, tick()

	case refreshMsg:
		m.resize()
		cmd := m.refresh()
		return m, cmd

	case appsync.ResultMsg:
		if msg.AuthError {
			m.authErrorMessage = "backend rejected the token: " + msg.Error.Error()
		} else if msg.Error == nil {
			m.authErrorMessage = ""
		}
		if m.desk.Apply(context.Background(), msg) {
			m.resize()
			cmd := tea.Batch(m.refresh(), m.poller.WaitForNextResult())
			return m, cmd
		}
		return m, m.poller.WaitForNextResult()

	case refreshAllMsg:
		applied := 0
		for _, r := range msg.results {
			if r.AuthError {
				m.authErrorMessage = "backend rejected the token: " + r.Error.Error()
			}
			if m.desk.Apply(context.Background(), r) {
				applied++
			}
		}
		m.statusMessage = fmt.Sprintf("refreshed %d feeds", applied)
		m.resize()
		cmd := m.refresh()
		return m, cmd

	case bell.MarkReadMsg:
		return m, m.markRead(msg.ID)

	case bell.MarkAllReadMsg:
		return m, m.markAllRead()

	case bell.DismissMsg:
		return m, m.dismiss(msg.ID)

	case actionDoneMsg:
		m.setResult(msg.err, msg.ok)
		m.resize()
		cmd := m.refresh()
		return m, cmd

	case ticketform.SubmitMsg:
		m.statusMessage = "submitting..."
		return m, m.submit(msg)

	case ticketform.UpdateMsg:
		m.statusMessage = "saving..."
		return m, m.update(msg)

	case ticketform.CancelMsg:
		m.currentView = ViewDashboard
		m.statusMessage = "cancelled"
		return m, nil

	case submitResultMsg:
		return m.handleSubmitResult(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.poller.Stop()
			return m, tea.Quit
		}
		if m.currentView == ViewForm {
			if key.Matches(msg, m.keys.Back) {
				m.currentView = ViewDashboard
				m.statusMessage = "cancelled"
				return m, nil
			}
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.poller.Stop()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case key.Matches(msg, m.keys.Back):
			m.currentView = ViewDashboard
			m.errorMessage = ""
			return m, nil
		}

		if m.currentView != ViewDashboard {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Refresh):
			m.statusMessage = "refreshing"
			return m, m.refreshAll()

		case key.Matches(msg, m.keys.NextPane):
			if m.focus == PaneBell {
				m.focus = PaneTickets
			} else {
				m.focus = PaneBell
			}
			return m, nil

		case key.Matches(msg, m.keys.DismissAlerts):
			return m, m.dismissBanner(model.FeedUnassignedAlerts)

		case key.Matches(msg, m.keys.DismissReminders):
			return m, m.dismissBanner(model.FeedAssignedReminders)

		case key.Matches(msg, m.keys.NewTicket):
			m.previousView = m.currentView
			m.currentView = ViewForm
			m.errorMessage = ""
			cmd := m.form.StartCreate()
			return m, cmd

		case key.Matches(msg, m.keys.EditTicket) && m.focus == PaneTickets:
			t, ok := m.tickets.Selected()
			if !ok {
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewForm
			m.errorMessage = ""
			cmd := m.form.StartEdit(t)
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

func (m *Model) handleSubmitResult(msg submitResultMsg) (tea.Model, tea.Cmd) {
	if matches, ok := duplicateMatches(msg.err); ok {
		m.currentView = ViewForm
		m.statusMessage = msg.err.Error()
		cmd := m.form.StartConfirm(matches)
		return *m, cmd
	}

	m.currentView = ViewDashboard
	if msg.err != nil {
		m.statusMessage = ""
		m.errorMessage = describeError(msg.err)
		return *m, nil
	}

	m.errorMessage = ""
	m.statusMessage = "created " + msg.res.Ticket.TicketNumber
	if msg.edited {
		m.statusMessage = "updated " + msg.res.Ticket.TicketNumber
	}
	if n := len(msg.res.Similar); n > 0 {
		m.statusMessage += fmt.Sprintf(" (%d similar this week)", n)
	}
	m.poller.Trigger(model.TicketFeed(msg.kind))
	cmd := m.refresh()
	return *m, cmd
}

// resize recomputes pane sizes; banner height changes as items come and go.
func (m *Model) resize() {
	board := m.desk.Board()
	h := banner.Height(len(board.Active(model.FeedUnassignedAlerts))) +
		banner.Height(len(board.Active(model.FeedAssignedReminders)))
	l := m.layout.WithBanners(h)

	m.bell.SetSize(l.BellWidth(), l.ContentHeight())
	m.tickets.SetSize(l.TicketWidth(), l.ContentHeight())
	m.form.SetSize(l.ContentWidth(), l.ContentHeight())
	m.helpView.SetSize(l.ContentWidth(), l.ContentHeight())
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewDashboard:
		if m.focus == PaneBell {
			m.bell, cmd = m.bell.Update(msg)
		} else {
			m.tickets, cmd = m.tickets.Update(msg)
		}
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	feed := m.desk.Feed()
	badge := ""
	if n := feed.UnreadCount(); n > 0 {
		badge = theme.BadgeStyle(feed.Badge()).Render(fmt.Sprintf("%d", n))
	}
	header := m.layout.RenderHeader("NOC Desk", badge, m.syncStatus())
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	if m.currentView != ViewDashboard {
		return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
	}

	now := m.now()
	board := m.desk.Board()
	alerts := banner.Render("Unassigned", "1", board.Active(model.FeedUnassignedAlerts), m.layout.Width, now)
	reminders := banner.Render("Reminders", "2", board.Active(model.FeedAssignedReminders), m.layout.Width, now)

	return m.layout.RenderWithFrame(header, alerts, reminders, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewForm:
		return m.form.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return m.layout.RenderPanes(m.bell.View(), m.tickets.View())
	}
}

// syncStatus returns a short string describing the combined sync state.
func (m Model) syncStatus() string {
	statuses := m.poller.GetStatuses()
	if len(statuses) == 0 {
		return "no feeds"
	}

	running := 0
	var failing []string
	for _, s := range statuses {
		switch s.State {
		case appsync.SyncRunning:
			running++
		case appsync.SyncError:
			failing = append(failing, string(s.Feed))
		}
	}

	if running > 0 {
		return fmt.Sprintf("syncing (%d)", running)
	}
	if len(failing) > 0 {
		return "unreachable: " + strings.Join(failing, ", ")
	}
	return "idle"
}

// statusLine returns the status bar text: errors first, then the last
// action, then key hints.
func (m Model) statusLine() string {
	switch {
	case m.authErrorMessage != "":
		return theme.ErrorStyle.Render(m.authErrorMessage)
	case m.errorMessage != "":
		return theme.ErrorStyle.Render(m.errorMessage)
	}

	var hints string
	switch m.currentView {
	case ViewHelp:
		hints = "? close help | esc back"
	case ViewForm:
		hints = "enter next | esc cancel"
	default:
		hints = m.helpView.ShortView()
	}
	if m.statusMessage != "" {
		return m.statusMessage + " | " + hints
	}
	return hints
}

func (m *Model) setResult(err error, ok string) {
	if err != nil {
		m.errorMessage = describeError(err)
		return
	}
	m.errorMessage = ""
	m.statusMessage = ok
}
