// Package ticketform is the huh form used to open or edit a ticket,
// including the confirmation step shown when a same-day duplicate is found.
package ticketform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/theme"
)

// SubmitMsg is dispatched when the form is completed. Confirmed is set when
// the user accepted a duplicate warning.
type SubmitMsg struct {
	Kind      model.TicketKind
	Ticket    model.Ticket
	Confirmed bool
}

// UpdateMsg is dispatched when an edit is completed. Patch carries every
// editable field as entered.
type UpdateMsg struct {
	Kind  model.TicketKind
	ID    string
	Patch model.TicketPatch
}

// CancelMsg is dispatched when the user cancels the form or declines a
// duplicate warning.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	kind          string
	priority      string
	status        string
	assignedTo    string
	customerID    string
	customerTrunk string
	destination   string
	issueTypes    string
	issueOther    string
	sid           string
	content       string
	volume        string
	openedVia     []string
	confirm       bool
}

// Model is the Bubble Tea model for the ticket form.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	confirming bool
	matches    []model.Ticket
	editing    *model.Ticket
	width      int
	height     int
}

// New creates a new ticket form model.
func New(width, height int) Model {
	return Model{fb: defaults(), width: width, height: height}
}

func defaults() *formBindings {
	return &formBindings{
		kind:     string(model.KindSMS),
		priority: model.PriorityMedium,
		status:   model.StatusUnassigned,
	}
}

// StartCreate resets the form for a new ticket.
func (m *Model) StartCreate() tea.Cmd {
	m.fb = defaults()
	m.confirming = false
	m.matches = nil
	m.editing = nil
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit loads t into the form for editing. Desk and customer are fixed.
func (m *Model) StartEdit(t model.Ticket) tea.Cmd {
	m.fb = bindingsFor(t)
	m.confirming = false
	m.matches = nil
	m.editing = &t
	m.form = m.buildEdit()
	return m.form.Init()
}

func bindingsFor(t model.Ticket) *formBindings {
	return &formBindings{
		kind:          string(t.Kind),
		priority:      t.Priority,
		status:        t.Status,
		assignedTo:    t.AssignedTo,
		customerID:    t.CustomerID,
		customerTrunk: t.CustomerTrunk,
		destination:   t.Destination,
		issueTypes:    strings.Join(t.IssueTypes, ", "),
		issueOther:    t.IssueOther,
		sid:           t.SID,
		content:       t.Content,
		volume:        string(t.Volume),
		openedVia:     []string(t.OpenedVia),
	}
}

// StartConfirm shows the duplicate warning for the values already entered.
func (m *Model) StartConfirm(matches []model.Ticket) tea.Cmd {
	m.confirming = true
	m.matches = matches
	m.fb.confirm = false
	m.form = m.buildConfirm()
	return m.form.Init()
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.handleSubmit()
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Ticket"
	switch {
	case m.confirming:
		titleText = "Possible Duplicate"
	case m.editing != nil:
		titleText = "Edit Ticket " + m.editing.TicketNumber
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func options(values []string) []huh.Option[string] {
	return huh.NewOptions(values...)
}

func (m *Model) buildForm() *huh.Form {
	kinds := make([]string, len(model.Kinds))
	for i, k := range model.Kinds {
		kinds[i] = string(k)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Desk").
				Options(options(kinds)...).
				Value(&m.fb.kind),
			huh.NewSelect[string]().
				Title("Priority").
				Options(options(model.Priorities)...).
				Value(&m.fb.priority),
			huh.NewSelect[string]().
				Title("Status").
				Options(options(model.Statuses)...).
				Value(&m.fb.status),
			huh.NewInput().
				Title("Assigned To").
				Placeholder("user id (required unless Unassigned)").
				Value(&m.fb.assignedTo),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Customer ID").
				Value(&m.fb.customerID).
				Validate(validateRequired("Customer ID")),
			huh.NewInput().
				Title("Customer Trunk").
				Value(&m.fb.customerTrunk).
				Validate(validateRequired("Customer Trunk")),
			huh.NewInput().
				Title("Destination").
				Value(&m.fb.destination),
			huh.NewInput().
				Title("Volume").
				Placeholder("e.g. 1500").
				Value(&m.fb.volume).
				Validate(validateRequired("Volume")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Issue Types").
				Placeholder("comma separated").
				Value(&m.fb.issueTypes),
			huh.NewInput().
				Title("Other Issue").
				Value(&m.fb.issueOther),
			huh.NewInput().
				Title("SID").
				Value(&m.fb.sid),
			huh.NewText().
				Title("Content").
				Value(&m.fb.content),
			huh.NewMultiSelect[string]().
				Title("Opened Via").
				Options(options([]string{
					model.OpenedViaMonitoring,
					model.OpenedViaAM,
					model.OpenedViaTeams,
					model.OpenedViaEmail,
				})...).
				Value(&m.fb.openedVia),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) buildEdit() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Priority").
				Options(options(model.Priorities)...).
				Value(&m.fb.priority),
			huh.NewSelect[string]().
				Title("Status").
				Options(options(model.Statuses)...).
				Value(&m.fb.status),
			huh.NewInput().
				Title("Assigned To").
				Placeholder("user id (required unless Unassigned)").
				Value(&m.fb.assignedTo),
			huh.NewInput().
				Title("Customer Trunk").
				Value(&m.fb.customerTrunk).
				Validate(validateRequired("Customer Trunk")),
			huh.NewInput().
				Title("Volume").
				Value(&m.fb.volume).
				Validate(validateRequired("Volume")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Destination").
				Value(&m.fb.destination),
			huh.NewInput().
				Title("Issue Types").
				Placeholder("comma separated").
				Value(&m.fb.issueTypes),
			huh.NewInput().
				Title("Other Issue").
				Value(&m.fb.issueOther),
			huh.NewInput().
				Title("SID").
				Value(&m.fb.sid),
			huh.NewText().
				Title("Content").
				Value(&m.fb.content),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) buildConfirm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(fmt.Sprintf("%d identical ticket(s) opened today", len(m.matches))).
				Description(describeMatches(m.matches)),
			huh.NewConfirm().
				Title("Submit anyway?").
				Affirmative("Submit").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth())
}

func describeMatches(matches []model.Ticket) string {
	lines := make([]string, 0, len(matches))
	for _, t := range matches {
		lines = append(lines, fmt.Sprintf("%s  %s  %s/%s  %s", t.TicketNumber, t.Status, t.CustomerID, t.CustomerTrunk, t.Destination))
	}
	return strings.Join(lines, "\n")
}

func (m Model) handleSubmit() tea.Cmd {
	kind := model.TicketKind(m.fb.kind)
	t := m.fb.ticket()

	if m.editing != nil {
		id := m.editing.ID
		kind = m.editing.Kind
		patch := m.fb.patch()
		return func() tea.Msg { return UpdateMsg{Kind: kind, ID: id, Patch: patch} }
	}
	if m.confirming {
		if !m.fb.confirm {
			return func() tea.Msg { return CancelMsg{} }
		}
		return func() tea.Msg { return SubmitMsg{Kind: kind, Ticket: t, Confirmed: true} }
	}
	return func() tea.Msg { return SubmitMsg{Kind: kind, Ticket: t} }
}

// ticket builds the candidate from the entered values.
func (fb *formBindings) ticket() model.Ticket {
	return model.Ticket{
		Kind:          model.TicketKind(fb.kind),
		Status:        fb.status,
		Priority:      fb.priority,
		AssignedTo:    strings.TrimSpace(fb.assignedTo),
		CustomerID:    strings.TrimSpace(fb.customerID),
		CustomerTrunk: strings.TrimSpace(fb.customerTrunk),
		Destination:   strings.TrimSpace(fb.destination),
		IssueTypes:    splitList(fb.issueTypes),
		IssueOther:    strings.TrimSpace(fb.issueOther),
		SID:           strings.TrimSpace(fb.sid),
		Content:       strings.TrimSpace(fb.content),
		Volume:        model.Volume(strings.TrimSpace(fb.volume)),
		OpenedVia:     model.NormalizeOpenedVia(fb.openedVia...),
	}
}

// patch carries every field the edit form shows.
func (fb *formBindings) patch() model.TicketPatch {
	t := fb.ticket()
	return model.TicketPatch{
		Status:        &t.Status,
		Priority:      &t.Priority,
		AssignedTo:    &t.AssignedTo,
		CustomerTrunk: &t.CustomerTrunk,
		Destination:   &t.Destination,
		IssueTypes:    &t.IssueTypes,
		IssueOther:    &t.IssueOther,
		SID:           &t.SID,
		Content:       &t.Content,
		Volume:        &t.Volume,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
