package reminder

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/nhle/noc-desk/internal/dismissal"
	"github.com/nhle/noc-desk/internal/model"
)

// Board tracks the banner feeds. Each banner item is Active, Suppressed
// (dismissed, timer running) or Gone (no longer fetched). Replace moves
// items to Gone, DismissAll moves Active items to Suppressed and the clock
// moves Suppressed items back to Active.
type Board struct {
	clock clock.Clock

	mu     sync.Mutex
	banner map[model.FeedName]*banner
}

type banner struct {
	marks   *dismissal.Marks
	fetched []model.BannerItem
	stamps  map[string]time.Time
}

// NewBoard returns a board over the given feeds. marks maps each feed to the
// bucket its dismissals persist in. A nil clock uses the wall clock.
func NewBoard(clk clock.Clock, marks map[model.FeedName]*dismissal.Marks) *Board {
	if clk == nil {
		clk = clock.New()
	}
	b := &Board{clock: clk, banner: make(map[model.FeedName]*banner, len(marks))}
	for name, m := range marks {
		b.banner[name] = &banner{marks: m, stamps: make(map[string]time.Time)}
	}
	return b
}

// Load reads the persisted dismissals of every feed.
func (b *Board) Load(ctx context.Context) {
	for name, bn := range b.banners() {
		stamps := bn.marks.Load(ctx)
		b.mu.Lock()
		maps.Copy(b.banner[name].stamps, stamps)
		b.mu.Unlock()
	}
}

func (b *Board) banners() map[model.FeedName]*banner {
	b.mu.Lock()
	defer b.mu.Unlock()
	return maps.Clone(b.banner)
}

// Replace sets the latest fetch of feed. Pass nil for a failed fetch.
func (b *Board) Replace(feed model.FeedName, items []model.BannerItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bn, ok := b.banner[feed]; ok {
		bn.fetched = slices.Clone(items)
	}
}

// Fetched returns the last fetch of feed, visible or not.
func (b *Board) Fetched(feed model.FeedName) []model.BannerItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bn, ok := b.banner[feed]; ok {
		return slices.Clone(bn.fetched)
	}
	return nil
}

// Active returns the items of feed visible right now.
func (b *Board) Active(feed model.FeedName) []model.BannerItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	bn, ok := b.banner[feed]
	if !ok {
		return nil
	}
	return ComputeActive(bn.fetched, bn.stamps, b.clock.Now())
}

// DismissAll suppresses every item currently fetched for feed, including
// ones already suppressed, whose timers restart.
func (b *Board) DismissAll(ctx context.Context, feed model.FeedName) error {
	b.mu.Lock()
	bn, ok := b.banner[feed]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("unknown banner feed %q", feed)
	}
	now := time.UnixMilli(b.clock.Now().UnixMilli())
	fetched := slices.Clone(bn.fetched)
	marks := bn.marks
	b.mu.Unlock()

	if err := DismissAllShown(ctx, marks, fetched, now); err != nil {
		return fmt.Errorf("saving banner dismissals: %w", err)
	}

	b.mu.Lock()
	for _, item := range fetched {
		bn.stamps[item.ID] = now
	}
	b.mu.Unlock()
	return nil
}
