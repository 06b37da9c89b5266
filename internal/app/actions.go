package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/noc-desk/internal/desk"
	"github.com/nhle/noc-desk/internal/integrity"
	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/source"
	appsync "github.com/nhle/noc-desk/internal/sync"
	"github.com/nhle/noc-desk/internal/ui/ticketform"
)

// actionDoneMsg is sent after a bell or banner action finished. ok is the
// status text shown on success.
type actionDoneMsg struct {
	err error
	ok  string
}

// submitResultMsg carries the outcome of a ticket create or edit.
type submitResultMsg struct {
	kind   model.TicketKind
	edited bool
	res    desk.SubmitResult
	err    error
}

// refreshAllMsg carries one fresh cycle of every feed.
type refreshAllMsg struct {
	results []appsync.ResultMsg
}

func (m *Model) refreshAll() tea.Cmd {
	p := m.poller
	return func() tea.Msg {
		return refreshAllMsg{results: p.RefreshAll(context.Background())}
	}
}

func (m *Model) markRead(id string) tea.Cmd {
	feed := m.desk.Feed()
	return func() tea.Msg {
		return actionDoneMsg{err: feed.MarkRead(context.Background(), id), ok: "marked read"}
	}
}

func (m *Model) markAllRead() tea.Cmd {
	feed := m.desk.Feed()
	return func() tea.Msg {
		return actionDoneMsg{err: feed.MarkAllRead(context.Background()), ok: "all read"}
	}
}

func (m *Model) dismiss(id string) tea.Cmd {
	feed := m.desk.Feed()
	return func() tea.Msg {
		return actionDoneMsg{err: feed.Dismiss(context.Background(), id), ok: "dismissed"}
	}
}

func (m *Model) dismissBanner(name model.FeedName) tea.Cmd {
	d := m.desk
	return func() tea.Msg {
		return actionDoneMsg{err: d.DismissBanner(context.Background(), name), ok: "banner dismissed"}
	}
}

func (m *Model) submit(msg ticketform.SubmitMsg) tea.Cmd {
	d := m.desk
	return func() tea.Msg {
		res, err := d.Submit(context.Background(), msg.Kind, msg.Ticket,
			desk.SubmitOptions{ConfirmedDuplicate: msg.Confirmed})
		return submitResultMsg{kind: msg.Kind, res: res, err: err}
	}
}

func (m *Model) update(msg ticketform.UpdateMsg) tea.Cmd {
	d := m.desk
	return func() tea.Msg {
		res, err := d.Update(context.Background(), msg.Kind, msg.ID, msg.Patch)
		return submitResultMsg{kind: msg.Kind, edited: true, res: res, err: err}
	}
}

// duplicateMatches returns the tickets behind a same-day duplicate error.
func duplicateMatches(err error) ([]model.Ticket, bool) {
	var dup *integrity.DuplicateSubmissionError
	if errors.As(err, &dup) {
		return dup.Matches, true
	}
	return nil, false
}

// describeError turns a submit or action error into status bar text.
func describeError(err error) string {
	var (
		capErr     *integrity.CapacityExceededError
		missing    *integrity.MissingRequiredFieldError
		invalid    *integrity.InvalidFieldError
		validation *source.ValidationError
	)

	switch {
	case errors.Is(err, integrity.ErrMissingAssignee):
		return "pick an assignee for an Assigned ticket"
	case errors.As(err, &capErr):
		return fmt.Sprintf("%s already has %d assigned tickets", capErr.Assignee, capErr.Count)
	case errors.As(err, &missing):
		return fmt.Sprintf("%s is required", missing.Field)
	case errors.As(err, &invalid):
		return fmt.Sprintf("%s: %q is not allowed", invalid.Field, invalid.Value)
	case source.IsNotFound(err):
		return "ticket no longer exists"
	case errors.As(err, &validation):
		return "rejected by backend: " + validation.Detail
	case source.IsAuthError(err):
		return "not authorized, check the API token"
	default:
		return err.Error()
	}
}
