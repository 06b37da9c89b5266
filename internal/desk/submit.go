package desk

import (
	"context"
	"fmt"
	"slices"

	"github.com/nhle/noc-desk/internal/integrity"
	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/source"
)

// SubmitOptions adjust a create.
type SubmitOptions struct {
	// ConfirmedDuplicate is set on the resubmission after the user accepted
	// a same-day duplicate warning.
	ConfirmedDuplicate bool
}

// SubmitResult is a stored ticket plus the weekly-similar tickets the user
// should be told about.
type SubmitResult struct {
	Ticket  model.Ticket
	Similar []model.Ticket
}

// Submit creates a ticket of kind after the integrity checks pass.
func (d *Desk) Submit(ctx context.Context, kind model.TicketKind, candidate model.Ticket, opts SubmitOptions) (SubmitResult, error) {
	candidate.Kind = kind
	if candidate.Status == "" {
		candidate.Status = model.StatusUnassigned
	}
	candidate.OpenedVia = model.NormalizeOpenedVia(candidate.OpenedVia...)

	existing := d.snapshot(ctx, kind)
	verdict, err := integrity.Check(integrity.Submission{
		Ticket:             candidate,
		Existing:           existing,
		ConfirmedDuplicate: opts.ConfirmedDuplicate,
		Now:                d.clock.Now(),
	})
	if err != nil {
		return SubmitResult{}, err
	}

	created, err := d.backend.Create(ctx, kind, candidate)
	if err != nil {
		return SubmitResult{}, err
	}
	if created.Date.IsZero() {
		created.Date = d.clock.Now()
	}
	if created.TicketNumber == "" && created.ID != "" {
		created.TicketNumber = model.TicketNumber(created.Date, created.ID)
	}

	d.upsertLocal(kind, created)
	return SubmitResult{Ticket: created, Similar: verdict.Similar}, nil
}

// Update applies patch to ticket id after merging it with the current
// ticket and re-running the field and assignment checks.
func (d *Desk) Update(ctx context.Context, kind model.TicketKind, id string, patch model.TicketPatch) (SubmitResult, error) {
	existing := d.snapshot(ctx, kind)

	idx := slices.IndexFunc(existing, func(t model.Ticket) bool { return t.ID == id })
	if idx < 0 {
		return SubmitResult{}, &source.NotFoundError{Resource: fmt.Sprintf("%s ticket %s", kind, id)}
	}

	merged := patch.Apply(existing[idx])
	merged.Kind = kind

	verdict, err := integrity.Check(integrity.Submission{
		Ticket:    merged,
		ExcludeID: id,
		Existing:  existing,
		Now:       d.clock.Now(),
	})
	if err != nil {
		return SubmitResult{}, err
	}

	updated, err := d.backend.Update(ctx, kind, id, merged)
	if err != nil {
		return SubmitResult{}, err
	}
	if updated.ID == "" {
		updated = merged
	}

	d.upsertLocal(kind, updated)
	return SubmitResult{Ticket: updated, Similar: verdict.Similar}, nil
}

// snapshot returns a fresh ticket list for the checks. When the backend
// is unreachable it falls back to the cache, then to the in-memory list.
func (d *Desk) snapshot(ctx context.Context, kind model.TicketKind) []model.Ticket {
	fresh, err := d.backend.List(ctx, kind)
	if err == nil {
		d.setTickets(ctx, kind, fresh)
		return fresh
	}
	d.log.Warn("listing tickets failed, checking against cache", "kind", kind, "error", err)

	cached, cerr := d.store.GetTickets(ctx, kind)
	if cerr == nil && len(cached) > 0 {
		return cached
	}
	return d.Tickets(kind)
}

func (d *Desk) setTickets(ctx context.Context, kind model.TicketKind, tickets []model.Ticket) {
	d.mu.Lock()
	d.tickets[kind] = slices.Clone(tickets)
	d.mu.Unlock()

	if err := d.store.ReplaceTickets(ctx, kind, tickets); err != nil {
		d.log.Warn("caching tickets failed", "kind", kind, "error", err)
	}
}

// upsertLocal folds a written ticket into the in-memory list so the next
// check sees it before the next poll.
func (d *Desk) upsertLocal(kind model.TicketKind, t model.Ticket) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := d.tickets[kind]
	if i := slices.IndexFunc(list, func(x model.Ticket) bool { return x.ID == t.ID }); i >= 0 {
		list[i] = t
		return
	}
	d.tickets[kind] = append([]model.Ticket{t}, list...)
}
