// Package rest implements the source contracts over the ticketing
// backend's HTTP API.
package rest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/source"
)

// itemNamespace seeds the ids derived for notifications the backend sent
// without one, so the same event maps to the same id on every poll.
var itemNamespace = uuid.MustParse("6f1c1d7e-3b0a-4e55-9a52-2f8f0c7d9a11")

// Backend implements source.Backend.
type Backend struct {
	client *Client
}

// New returns a Backend for the API at baseURL.
func New(baseURL, token string, timeout time.Duration) *Backend {
	return &Backend{client: NewClient(baseURL, token, timeout)}
}

// ValidateConnection checks the token by calling GET /auth/me.
func (b *Backend) ValidateConnection(ctx context.Context) (Me, error) {
	var me Me
	if err := b.client.Get(ctx, "/auth/me", &me); err != nil {
		return Me{}, fmt.Errorf("validating backend connection: %w", err)
	}
	return me, nil
}

func ticketsPath(kind model.TicketKind) string {
	return "/tickets/" + url.PathEscape(string(kind))
}

// List returns all tickets of kind.
func (b *Backend) List(ctx context.Context, kind model.TicketKind) ([]model.Ticket, error) {
	var tickets []model.Ticket
	if err := b.client.Get(ctx, ticketsPath(kind), &tickets); err != nil {
		return nil, fmt.Errorf("listing %s tickets: %w", kind, err)
	}
	for i := range tickets {
		tickets[i].Kind = kind
	}
	return tickets, nil
}

// Create posts a new ticket.
func (b *Backend) Create(ctx context.Context, kind model.TicketKind, t model.Ticket) (model.Ticket, error) {
	var created model.Ticket
	if err := b.client.Post(ctx, ticketsPath(kind), toPayload(t), &created); err != nil {
		return model.Ticket{}, fmt.Errorf("creating %s ticket: %w", kind, err)
	}
	created.Kind = kind
	return created, nil
}

// Update replaces the editable fields of ticket id.
func (b *Backend) Update(ctx context.Context, kind model.TicketKind, id string, t model.Ticket) (model.Ticket, error) {
	var updated model.Ticket
	path := ticketsPath(kind) + "/" + url.PathEscape(id)
	if err := b.client.Put(ctx, path, toPayload(t), &updated); err != nil {
		return model.Ticket{}, fmt.Errorf("updating %s ticket %s: %w", kind, id, err)
	}
	updated.Kind = kind
	return updated, nil
}

func toPayload(t model.Ticket) ticketPayload {
	p := ticketPayload{
		Priority:      t.Priority,
		Volume:        string(t.Volume),
		CustomerID:    t.CustomerID,
		CustomerTrunk: t.CustomerTrunk,
		Destination:   t.Destination,
		IssueTypes:    t.IssueTypes,
		IssueOther:    t.IssueOther,
		OpenedVia:     model.NormalizeOpenedVia(t.OpenedVia...),
		Status:        t.Status,
		SID:           t.SID,
		Content:       t.Content,
	}
	if p.IssueTypes == nil {
		p.IssueTypes = []string{}
	}
	if t.AssignedTo != "" {
		assignee := t.AssignedTo
		p.AssignedTo = &assignee
	}
	return p
}

// FetchTicketModifications returns changes other users made to tickets
// assigned to the current user.
func (b *Backend) FetchTicketModifications(ctx context.Context) ([]model.NotificationItem, error) {
	return b.fetchNotifications(ctx, "/dashboard/ticket-modifications")
}

// FetchAlertNotifications returns alert events for the bell.
func (b *Backend) FetchAlertNotifications(ctx context.Context) ([]model.NotificationItem, error) {
	return b.fetchNotifications(ctx, "/dashboard/alert-notifications")
}

// FetchRequestNotifications returns request status updates for the bell.
func (b *Backend) FetchRequestNotifications(ctx context.Context) ([]model.NotificationItem, error) {
	return b.fetchNotifications(ctx, "/requests/notifications")
}

func (b *Backend) fetchNotifications(ctx context.Context, path string) ([]model.NotificationItem, error) {
	var items []model.NotificationItem
	if err := b.client.Get(ctx, path, &items); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = derivedID(items[i])
		}
	}
	return items, nil
}

// derivedID names an id-less event by its content.
func derivedID(n model.NotificationItem) string {
	key := strings.Join([]string{
		n.TicketID, n.AlertTicketNumber, n.RequestID,
		n.EventType, n.NotificationType, n.Type,
		n.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, "|")
	return uuid.NewSHA1(itemNamespace, []byte(key)).String()
}

// FetchAlerts returns unassigned tickets past their wait threshold.
func (b *Backend) FetchAlerts(ctx context.Context) ([]model.BannerItem, error) {
	return b.fetchBanner(ctx, "/dashboard/unassigned-alerts")
}

// FetchAssignedReminders returns assigned tickets that have gone stale.
func (b *Backend) FetchAssignedReminders(ctx context.Context) ([]model.BannerItem, error) {
	return b.fetchBanner(ctx, "/dashboard/assigned-reminders")
}

func (b *Backend) fetchBanner(ctx context.Context, path string) ([]model.BannerItem, error) {
	var items []model.BannerItem
	if err := b.client.Get(ctx, path, &items); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	return items, nil
}

// ackPaths maps a bell category to its read endpoint prefix.
var ackPaths = map[model.Category]string{
	model.CategoryTicket:  "/dashboard/ticket-modifications/",
	model.CategoryAlert:   "/dashboard/alert-notifications/",
	model.CategoryRequest: "/requests/notifications/",
}

// MarkRead tells the backend the item was read. It makes a single attempt.
func (b *Backend) MarkRead(ctx context.Context, kind model.Category, id string) error {
	prefix, ok := ackPaths[kind]
	if !ok {
		return fmt.Errorf("no read endpoint for %q items", kind)
	}
	if err := b.client.PostOnce(ctx, prefix+url.PathEscape(id)+"/read", nil, nil); err != nil {
		return fmt.Errorf("marking %s %s read: %w", kind, id, err)
	}
	return nil
}

var _ source.Backend = (*Backend)(nil)
