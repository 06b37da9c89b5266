package desk

import (
	"context"
	"time"

	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/reminder"
	appsync "github.com/nhle/noc-desk/internal/sync"
)

// accept records seq as the latest cycle of feed. It reports false for a
// cycle that started before one already applied.
func (d *Desk) accept(feed model.FeedName, seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if seq <= d.applied[feed] {
		d.log.Debug("discarding stale cycle", "feed", feed, "seq", seq, "applied", d.applied[feed])
		return false
	}
	d.applied[feed] = seq
	return true
}

// ApplyBell replaces one bell source. A failed fetch empties that source
// for the cycle; the other sources stay as they are.
func (d *Desk) ApplyBell(feed model.FeedName, seq uint64, items []model.NotificationItem, err error) bool {
	if !d.accept(feed, seq) {
		return false
	}
	if err != nil {
		items = nil
	}
	d.feed.Replace(feed, items)
	return true
}

// ApplyBanner replaces one banner feed. A failed fetch empties it for the
// cycle.
func (d *Desk) ApplyBanner(feed model.FeedName, seq uint64, items []model.BannerItem, err error) bool {
	if !d.accept(feed, seq) {
		return false
	}
	if err != nil {
		items = nil
	}
	d.board.Replace(feed, items)
	return true
}

// ApplyTickets replaces the ticket list of kind and refreshes the cache.
// A failed fetch keeps the previous list.
func (d *Desk) ApplyTickets(ctx context.Context, kind model.TicketKind, seq uint64, tickets []model.Ticket, err error) bool {
	if !d.accept(model.TicketFeed(kind), seq) {
		return false
	}
	if err != nil {
		return true
	}
	d.setTickets(ctx, kind, tickets)
	return true
}

// Apply routes a poll result to the matching Apply method.
func (d *Desk) Apply(ctx context.Context, msg appsync.ResultMsg) bool {
	switch msg.Feed {
	case model.FeedTicketModifications, model.FeedAlertNotifications, model.FeedRequestNotifications:
		return d.ApplyBell(msg.Feed, msg.Seq, msg.Payload.Bell, msg.Error)
	case model.FeedUnassignedAlerts, model.FeedAssignedReminders:
		return d.ApplyBanner(msg.Feed, msg.Seq, msg.Payload.Banner, msg.Error)
	case model.FeedSMSTickets:
		return d.ApplyTickets(ctx, model.KindSMS, msg.Seq, msg.Payload.Tickets, msg.Error)
	case model.FeedVoiceTickets:
		return d.ApplyTickets(ctx, model.KindVoice, msg.Seq, msg.Payload.Tickets, msg.Error)
	default:
		d.log.Warn("result for unknown feed", "feed", msg.Feed)
		return false
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Jobs returns the poll jobs for every feed the desk consumes.
func (d *Desk) Jobs() []appsync.Job {
	b := d.backend
	poll := d.cfg.Poll

	bell := func(feed model.FeedName, sec int, fetch func(context.Context) ([]model.NotificationItem, error)) appsync.Job {
		return appsync.Job{Feed: feed, Interval: seconds(sec), Fetch: func(ctx context.Context) (appsync.Payload, error) {
			items, err := fetch(ctx)
			return appsync.Payload{Bell: items}, err
		}}
	}
	banner := func(feed model.FeedName, sec int, fetch func(context.Context) ([]model.BannerItem, error)) appsync.Job {
		return appsync.Job{Feed: feed, Interval: seconds(sec), Fetch: func(ctx context.Context) (appsync.Payload, error) {
			items, err := fetch(ctx)
			return appsync.Payload{Banner: items}, err
		}}
	}

	alerts := b.FetchAlerts
	if d.cfg.AlertsMode == model.AlertsModeLocal {
		alerts = d.localUnassignedAlerts
	}

	jobs := []appsync.Job{
		bell(model.FeedTicketModifications, poll.TicketModificationsSec, b.FetchTicketModifications),
		bell(model.FeedAlertNotifications, poll.AlertNotificationsSec, b.FetchAlertNotifications),
		bell(model.FeedRequestNotifications, poll.RequestNotificationsSec, b.FetchRequestNotifications),
		banner(model.FeedUnassignedAlerts, poll.UnassignedAlertsSec, alerts),
		banner(model.FeedAssignedReminders, poll.AssignedRemindersSec, b.FetchAssignedReminders),
	}

	for _, kind := range model.Kinds {
		jobs = append(jobs, appsync.Job{
			Feed:     model.TicketFeed(kind),
			Interval: seconds(poll.TicketsSec),
			Fetch: func(ctx context.Context) (appsync.Payload, error) {
				tickets, err := b.List(ctx, kind)
				return appsync.Payload{Tickets: tickets}, err
			},
		})
	}
	return jobs
}

// localUnassignedAlerts computes the unassigned banner from fresh ticket
// lists instead of asking the backend.
func (d *Desk) localUnassignedAlerts(ctx context.Context) ([]model.BannerItem, error) {
	var all []model.Ticket
	for _, kind := range model.Kinds {
		tickets, err := d.backend.List(ctx, kind)
		if err != nil {
			return nil, err
		}
		all = append(all, tickets...)
	}
	return reminder.UnassignedAlerts(all, d.clock.Now()), nil
}
