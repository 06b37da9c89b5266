package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/source"
)

// FakeBackend is an in-memory source.Backend. Set the Err fields to make
// the matching call fail.
type FakeBackend struct {
	mu sync.Mutex

	Tickets       map[model.TicketKind][]model.Ticket
	Modifications []model.NotificationItem
	AlertEvents   []model.NotificationItem
	Requests      []model.NotificationItem
	Alerts        []model.BannerItem
	Reminders     []model.BannerItem

	ListErr   error
	CreateErr error
	FetchErr  error
	AckErr    error

	Created []model.Ticket
	Updated []model.Ticket
	Acked   []string
}

// NewFakeBackend returns an empty fake.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{Tickets: make(map[model.TicketKind][]model.Ticket)}
}

func (f *FakeBackend) List(_ context.Context, kind model.TicketKind) ([]model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return slices.Clone(f.Tickets[kind]), nil
}

func (f *FakeBackend) Create(_ context.Context, kind model.TicketKind, t model.Ticket) (model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return model.Ticket{}, f.CreateErr
	}
	t.ID = uuid.NewString()
	t.Kind = kind
	f.Tickets[kind] = append(f.Tickets[kind], t)
	f.Created = append(f.Created, t)
	return t, nil
}

func (f *FakeBackend) Update(_ context.Context, kind model.TicketKind, id string, t model.Ticket) (model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.Tickets[kind]
	i := slices.IndexFunc(list, func(x model.Ticket) bool { return x.ID == id })
	if i < 0 {
		return model.Ticket{}, &source.NotFoundError{Resource: id}
	}
	t.ID = id
	list[i] = t
	f.Updated = append(f.Updated, t)
	return t, nil
}

func (f *FakeBackend) FetchTicketModifications(context.Context) ([]model.NotificationItem, error) {
	return fetch(f, func() []model.NotificationItem { return f.Modifications })
}

func (f *FakeBackend) FetchAlertNotifications(context.Context) ([]model.NotificationItem, error) {
	return fetch(f, func() []model.NotificationItem { return f.AlertEvents })
}

func (f *FakeBackend) FetchRequestNotifications(context.Context) ([]model.NotificationItem, error) {
	return fetch(f, func() []model.NotificationItem { return f.Requests })
}

func (f *FakeBackend) FetchAlerts(context.Context) ([]model.BannerItem, error) {
	return fetch(f, func() []model.BannerItem { return f.Alerts })
}

func (f *FakeBackend) FetchAssignedReminders(context.Context) ([]model.BannerItem, error) {
	return fetch(f, func() []model.BannerItem { return f.Reminders })
}

func (f *FakeBackend) MarkRead(_ context.Context, kind model.Category, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Acked = append(f.Acked, string(kind)+":"+id)
	return f.AckErr
}

func fetch[T any](f *FakeBackend, get func() []T) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	return slices.Clone(get()), nil
}

var _ source.Backend = (*FakeBackend)(nil)
