// Package report computes the dashboard statistics shown above the ticket
// lists.
package report

import (
	"cmp"
	"slices"

	"github.com/nhle/noc-desk/internal/model"
)

// RecentLimit is how many tickets Summary.Recent holds.
const RecentLimit = 10

// Count is one row of a breakdown table.
type Count struct {
	Label string
	N     int
}

// Summary holds the dashboard numbers for both desks.
type Summary struct {
	Total      int
	ByKind     map[model.TicketKind]int
	ByStatus   []Count
	ByPriority []Count
	Recent     []model.Ticket
}

// Summarize counts sms and voice tickets together. Status and priority rows
// follow the display order of model.Statuses and model.Priorities; values
// outside those lists are appended in first-seen order.
func Summarize(sms, voice []model.Ticket) Summary {
	all := make([]model.Ticket, 0, len(sms)+len(voice))
	all = append(all, sms...)
	all = append(all, voice...)

	s := Summary{
		Total: len(all),
		ByKind: map[model.TicketKind]int{
			model.KindSMS:   len(sms),
			model.KindVoice: len(voice),
		},
		ByStatus:   breakdown(all, model.Statuses, func(t model.Ticket) string { return t.Status }),
		ByPriority: breakdown(all, model.Priorities, func(t model.Ticket) string { return t.Priority }),
	}

	recent := slices.Clone(all)
	slices.SortStableFunc(recent, func(a, b model.Ticket) int {
		return cmp.Compare(b.Date.UnixNano(), a.Date.UnixNano())
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	s.Recent = recent
	return s
}

func breakdown(tickets []model.Ticket, order []string, field func(model.Ticket) string) []Count {
	counts := make(map[string]int)
	var extra []string
	for _, t := range tickets {
		v := field(t)
		if v == "" {
			continue
		}
		if counts[v] == 0 && !slices.Contains(order, v) {
			extra = append(extra, v)
		}
		counts[v]++
	}

	rows := make([]Count, 0, len(order)+len(extra))
	for _, label := range order {
		rows = append(rows, Count{Label: label, N: counts[label]})
	}
	for _, label := range extra {
		rows = append(rows, Count{Label: label, N: counts[label]})
	}
	return rows
}

// Get returns the count for label, or zero.
func Get(rows []Count, label string) int {
	for _, r := range rows {
		if r.Label == label {
			return r.N
		}
	}
	return 0
}
