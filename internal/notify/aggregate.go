// Package notify merges the bell feeds (ticket changes, alerts and request
// updates) into one list and tracks what the user has read or dismissed.
package notify

import (
	"slices"
	"time"

	"github.com/nhle/noc-desk/internal/model"
)

// badgeOrder is the precedence used for the bell badge color. It ignores
// each item's own priority.
var badgeOrder = []model.Category{
	model.CategoryAlert,
	model.CategoryTicket,
	model.CategoryRequest,
}

// Merge flattens the source lists, drops dismissed ids and duplicate ids
// (the first occurrence wins), and orders the rest newest first. Items with
// equal timestamps keep their input order.
func Merge(sources [][]model.NotificationItem, dismissed map[string]time.Time) []model.NotificationItem {
	seen := make(map[string]struct{})
	var out []model.NotificationItem

	for _, items := range sources {
		for _, n := range items {
			if _, gone := dismissed[n.ID]; gone {
				continue
			}
			if _, dup := seen[n.ID]; dup {
				continue
			}
			seen[n.ID] = struct{}{}
			out = append(out, n)
		}
	}

	slices.SortStableFunc(out, func(a, b model.NotificationItem) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// UnreadCount counts merged items missing from read.
func UnreadCount(merged []model.NotificationItem, read map[string]time.Time) int {
	n := 0
	for _, item := range merged {
		if _, ok := read[item.ID]; !ok {
			n++
		}
	}
	return n
}

// BadgeCategory returns the highest-precedence category (alert, then
// ticket, then request) with at least one unread item, or CategoryNone.
func BadgeCategory(merged []model.NotificationItem, read map[string]time.Time) model.Category {
	unread := make(map[model.Category]bool, len(badgeOrder))
	for _, item := range merged {
		if _, ok := read[item.ID]; !ok {
			unread[item.Category()] = true
		}
	}
	for _, c := range badgeOrder {
		if unread[c] {
			return c
		}
	}
	return model.CategoryNone
}
