// Package desk ties the pieces together: it runs ticket writes through the
// integrity checks, applies poll results to the bell and banners, and keeps
// the ticket snapshot those checks run against.
package desk

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/facebookgo/clock"

	"github.com/nhle/noc-desk/internal/dismissal"
	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/notify"
	"github.com/nhle/noc-desk/internal/reminder"
	"github.com/nhle/noc-desk/internal/source"
	"github.com/nhle/noc-desk/internal/store"
)

// Config holds the desk settings that are not collaborators.
type Config struct {
	UserID     string
	AlertsMode string
	Poll       model.PollConfig
}

// Desk is the engine behind the dashboard.
type Desk struct {
	cfg     Config
	backend source.Backend
	store   store.Store
	clock   clock.Clock
	log     *slog.Logger

	feed  *notify.Feed
	board *reminder.Board

	mu      sync.Mutex
	applied map[model.FeedName]uint64
	tickets map[model.TicketKind][]model.Ticket
}

// New wires a Desk. A nil clock uses the wall clock; a nil logger uses
// slog.Default.
func New(cfg Config, backend source.Backend, st store.Store, clk clock.Clock, log *slog.Logger) *Desk {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.AlertsMode == "" {
		cfg.AlertsMode = model.AlertsModeRemote
	}

	feed := notify.NewFeed(notify.FeedConfig{
		Read:      dismissal.New(st, dismissal.ReadBucket(cfg.UserID), log),
		Dismissed: dismissal.New(st, dismissal.DismissedBucket(cfg.UserID), log),
		Ack:       backend,
		Clock:     clk,
		Log:       log,
	})

	banners := make(map[model.FeedName]*dismissal.Marks, len(model.BannerFeeds))
	for _, name := range model.BannerFeeds {
		banners[name] = dismissal.New(st, dismissal.BannerBucket(string(name), cfg.UserID), log)
	}

	return &Desk{
		cfg:     cfg,
		backend: backend,
		store:   st,
		clock:   clk,
		log:     log,
		feed:    feed,
		board:   reminder.NewBoard(clk, banners),
		applied: make(map[model.FeedName]uint64),
		tickets: make(map[model.TicketKind][]model.Ticket),
	}
}

// Load restores persisted marks and the cached ticket lists.
func (d *Desk) Load(ctx context.Context) {
	d.feed.Load(ctx)
	d.board.Load(ctx)

	for _, kind := range model.Kinds {
		cached, err := d.store.GetTickets(ctx, kind)
		if err != nil {
			d.log.Warn("loading ticket cache failed", "kind", kind, "error", err)
			continue
		}
		d.mu.Lock()
		d.tickets[kind] = cached
		d.mu.Unlock()
	}
}

// Feed returns the bell.
func (d *Desk) Feed() *notify.Feed { return d.feed }

// Board returns the banners.
func (d *Desk) Board() *reminder.Board { return d.board }

// Tickets returns the last known ticket list for kind.
func (d *Desk) Tickets(kind model.TicketKind) []model.Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.tickets[kind])
}

// DismissBanner suppresses every item currently fetched for a banner feed.
func (d *Desk) DismissBanner(ctx context.Context, feed model.FeedName) error {
	return d.board.DismissAll(ctx, feed)
}
