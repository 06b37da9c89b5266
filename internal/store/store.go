package store

import (
	"context"

	"github.com/nhle/noc-desk/internal/model"
)

// MarkStore persists per-item marks: a map from item id to the epoch
// millisecond at which the item was read or dismissed. Marks are grouped
// in named buckets, one per (kind of mark, user).
//
// Writes are per key. Implementations must never replace a whole bucket
// from a caller-supplied snapshot, so two poll cycles stamping different
// items cannot lose each other's writes.
type MarkStore interface {
	// LoadMarks returns every mark in bucket. A missing bucket is empty.
	LoadMarks(ctx context.Context, bucket string) (map[string]int64, error)

	// UpsertMark sets a single mark, overwriting any previous timestamp.
	UpsertMark(ctx context.Context, bucket, itemID string, atMs int64) error

	// UpsertMarks sets several marks at once. Either all are written or
	// none are.
	UpsertMarks(ctx context.Context, bucket string, marks map[string]int64) error

	// ResetMarks empties a bucket.
	ResetMarks(ctx context.Context, bucket string) error
}

// TicketCache keeps the last ticket list fetched for each kind so the
// submission checks have a snapshot when the backend is unreachable.
type TicketCache interface {
	// ReplaceTickets swaps the cached snapshot for kind.
	ReplaceTickets(ctx context.Context, kind model.TicketKind, tickets []model.Ticket) error

	// GetTickets returns the cached snapshot for kind, newest first.
	GetTickets(ctx context.Context, kind model.TicketKind) ([]model.Ticket, error)
}

// Store is the full local persistence surface.
type Store interface {
	MarkStore
	TicketCache
	Close() error
}
