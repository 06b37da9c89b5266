package reminder

import (
	"fmt"
	"time"

	"github.com/nhle/noc-desk/internal/model"
)

// UnassignedThreshold is how long an unassigned ticket may wait before it
// raises an alert. Unknown priorities get the Medium threshold.
func UnassignedThreshold(priority string) time.Duration {
	switch priority {
	case model.PriorityUrgent:
		return 5 * time.Minute
	case model.PriorityHigh:
		return 10 * time.Minute
	case model.PriorityLow:
		return 20 * time.Minute
	default:
		return 15 * time.Minute
	}
}

// UnassignedAlerts derives the unassigned-ticket banner from a ticket
// snapshot: every Unassigned ticket that has waited at least its
// threshold. This is what the backend's alert endpoint computes; the desk
// uses it when alerts are configured to run locally.
func UnassignedAlerts(tickets []model.Ticket, now time.Time) []model.BannerItem {
	var out []model.BannerItem
	for _, t := range tickets {
		if t.Status != model.StatusUnassigned || t.Date.IsZero() {
			continue
		}
		priority := t.Priority
		if priority == "" {
			priority = model.PriorityMedium
		}
		threshold := UnassignedThreshold(priority)
		if t.Date.After(now.Add(-threshold)) {
			continue
		}

		waiting := t.Date
		customer := t.Customer
		if customer == "" {
			customer = "Unknown"
		}
		out = append(out, model.BannerItem{
			ID:              t.ID,
			TicketNumber:    t.TicketNumber,
			TicketType:      t.Kind,
			Priority:        priority,
			Customer:        customer,
			Message:         fmt.Sprintf("%s unassigned for %d min", t.TicketNumber, int(now.Sub(t.Date).Minutes())),
			WaitingSince:    &waiting,
			IntervalMinutes: int(threshold.Minutes()),
		})
	}
	return out
}
