// Package reminder decides which banner warnings are visible. A banner
// dismissal only hides an item until its priority's resurfacing interval
// runs out; the next poll then shows it again if the backend still
// reports it.
package reminder

import (
	"context"
	"time"

	"github.com/nhle/noc-desk/internal/dismissal"
	"github.com/nhle/noc-desk/internal/model"
)

// ResurfaceInterval is how long a dismissed banner item stays hidden.
// Unknown priorities get the Medium interval.
func ResurfaceInterval(priority string) time.Duration {
	switch priority {
	case model.PriorityUrgent:
		return 5 * time.Minute
	case model.PriorityHigh:
		return 10 * time.Minute
	case model.PriorityLow:
		return 30 * time.Minute
	default:
		return 20 * time.Minute
	}
}

// IsActive reports whether item should be shown at now given its last
// dismissal, if any.
func IsActive(item model.BannerItem, dismissedAt time.Time, dismissed bool, now time.Time) bool {
	if !dismissed {
		return true
	}
	return now.Sub(dismissedAt) >= ResurfaceInterval(item.Priority)
}

// ComputeActive returns the fetched items that are visible at now, in
// fetch order. Items missing from fetched are gone regardless of their
// dismissal state.
func ComputeActive(fetched []model.BannerItem, dismissed map[string]time.Time, now time.Time) []model.BannerItem {
	var out []model.BannerItem
	for _, item := range fetched {
		at, ok := dismissed[item.ID]
		if IsActive(item, at, ok, now) {
			out = append(out, item)
		}
	}
	return out
}

// DismissAllShown stamps every fetched id with now in one all-or-nothing
// write.
func DismissAllShown(ctx context.Context, marks *dismissal.Marks, fetched []model.BannerItem, now time.Time) error {
	ids := make([]string, 0, len(fetched))
	for _, item := range fetched {
		ids = append(ids, item.ID)
	}
	return marks.SetAll(ctx, ids, now)
}
