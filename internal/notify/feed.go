package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/nhle/noc-desk/internal/dismissal"
	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/source"
)

// Feed is the bell: the merged view of every bell source plus the user's
// read and dismiss marks. An item moves Unread to Read through MarkRead and
// from either state to Dismissed through Dismiss. Dismissed is terminal.
//
// Feed is safe for concurrent use; poll results for different sources may
// arrive from different goroutines.
type Feed struct {
	read      *dismissal.Marks
	dismissed *dismissal.Marks
	ack       source.RemoteAck
	clock     clock.Clock
	log       *slog.Logger

	mu           sync.Mutex
	sources      map[model.FeedName][]model.NotificationItem
	readSet      map[string]time.Time
	dismissedSet map[string]time.Time
	merged       []model.NotificationItem
}

// FeedConfig wires a Feed. Ack and Clock may be nil.
type FeedConfig struct {
	Read      *dismissal.Marks
	Dismissed *dismissal.Marks
	Ack       source.RemoteAck
	Clock     clock.Clock
	Log       *slog.Logger
}

// NewFeed returns an empty feed. Call Load to pick up persisted marks.
func NewFeed(cfg FeedConfig) *Feed {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	return &Feed{
		read:         cfg.Read,
		dismissed:    cfg.Dismissed,
		ack:          cfg.Ack,
		clock:        cfg.Clock,
		log:          cfg.Log,
		sources:      make(map[model.FeedName][]model.NotificationItem),
		readSet:      make(map[string]time.Time),
		dismissedSet: make(map[string]time.Time),
	}
}

// Load reads the persisted marks and folds them into the in-memory sets.
// Persistence failures leave the sets as they were.
func (f *Feed) Load(ctx context.Context) {
	read := f.read.Load(ctx)
	dismissed := f.dismissed.Load(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	maps.Copy(f.readSet, read)
	maps.Copy(f.dismissedSet, dismissed)
	f.rebuild()
}

// Replace sets the latest items of one source. A failed fetch is passed as
// nil so the source is empty for this cycle and the others stay visible.
func (f *Feed) Replace(name model.FeedName, items []model.NotificationItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources[name] = slices.Clone(items)
	f.rebuild()
}

// rebuild recomputes the merged list. Callers hold f.mu.
func (f *Feed) rebuild() {
	lists := make([][]model.NotificationItem, 0, len(model.BellFeeds))
	for _, name := range model.BellFeeds {
		lists = append(lists, f.sources[name])
	}
	f.merged = Merge(lists, f.dismissedSet)
}

// Items returns the merged feed, newest first.
func (f *Feed) Items() []model.NotificationItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.merged)
}

// IsRead reports whether id has been read.
func (f *Feed) IsRead(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.readSet[id]
	return ok
}

// UnreadCount returns how many visible items are unread.
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return UnreadCount(f.merged, f.readSet)
}

// Badge returns the category that colors the bell.
func (f *Feed) Badge() model.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	return BadgeCategory(f.merged, f.readSet)
}

// MarkRead records id as read. Marking an already read item keeps its
// first read time. The item stays in the feed.
func (f *Feed) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	if _, ok := f.readSet[id]; ok {
		f.mu.Unlock()
		return nil
	}
	now := f.clock.Now()
	f.readSet[id] = now
	f.mu.Unlock()

	if err := f.read.Set(ctx, id, now); err != nil {
		return fmt.Errorf("saving read mark: %w", err)
	}
	return nil
}

// MarkAllRead marks every visible unread item as read in one write.
func (f *Feed) MarkAllRead(ctx context.Context) error {
	f.mu.Lock()
	now := f.clock.Now()
	var ids []string
	for _, item := range f.merged {
		if _, ok := f.readSet[item.ID]; !ok {
			f.readSet[item.ID] = now
			ids = append(ids, item.ID)
		}
	}
	f.mu.Unlock()

	if err := f.read.SetAll(ctx, ids, now); err != nil {
		return fmt.Errorf("saving read marks: %w", err)
	}
	return nil
}

// Dismiss removes id from the feed for good. The item is also marked read.
// The dismissal time is stamped with the current clock on every call, so
// dismissing again later moves the stamp forward.
//
// Both marks are stored before the backend is told through RemoteAck. The
// ack is sent once; a failed ack is logged and the local dismissal stands.
func (f *Feed) Dismiss(ctx context.Context, id string) error {
	f.mu.Lock()
	now := f.clock.Now()
	kind := model.CategoryNone
	for _, item := range f.merged {
		if item.ID == id {
			kind = item.Category()
			break
		}
	}
	f.dismissedSet[id] = now
	if _, ok := f.readSet[id]; !ok {
		f.readSet[id] = now
	}
	readAt := f.readSet[id]
	f.rebuild()
	f.mu.Unlock()

	var errs []error
	if err := f.dismissed.Set(ctx, id, now); err != nil {
		errs = append(errs, fmt.Errorf("saving dismissal: %w", err))
	}
	if err := f.read.Set(ctx, id, readAt); err != nil {
		errs = append(errs, fmt.Errorf("saving read mark: %w", err))
	}

	if f.ack != nil && kind != model.CategoryNone {
		if err := f.ack.MarkRead(ctx, kind, id); err != nil {
			f.log.Debug("remote ack failed", "id", id, "kind", kind, "error", err)
		}
	}
	return errors.Join(errs...)
}
