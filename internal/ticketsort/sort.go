// Package ticketsort orders ticket lists the way the desk displays them:
// newest calendar day first, then priority, volume and intake channel.
package ticketsort

import (
	"cmp"
	"slices"
	"time"

	"github.com/nhle/noc-desk/internal/model"
)

// unknownRank sorts unrecognized priorities and channels last.
const unknownRank = 999

var priorityRanks = map[string]int{
	model.PriorityUrgent: 0,
	model.PriorityHigh:   1,
	model.PriorityMedium: 2,
	model.PriorityLow:    3,
}

var openedViaRanks = map[string]int{
	model.OpenedViaMonitoring: 0,
	model.OpenedViaAM:         1,
	model.OpenedViaTeams:      2,
	model.OpenedViaEmail:      3,
}

// PriorityRank returns the sort rank of a priority (Urgent=0 … Low=3).
func PriorityRank(priority string) int {
	if r, ok := priorityRanks[priority]; ok {
		return r
	}
	return unknownRank
}

// OpenedViaRank returns the best (lowest) rank among the selected channels.
func OpenedViaRank(channels model.OpenedVia) int {
	best := unknownRank
	for _, c := range channels {
		if r, ok := openedViaRanks[c]; ok && r < best {
			best = r
		}
	}
	return best
}

// Sorter orders tickets by calendar day in a fixed location.
type Sorter struct {
	Location *time.Location
}

// Default uses the process's local time zone.
var Default = Sorter{Location: time.Local}

func (s Sorter) loc() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// Day truncates t to midnight of its calendar day in the sorter's location.
func (s Sorter) Day(t time.Time) time.Time {
	y, m, d := t.In(s.loc()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc())
}

// Compare orders a before b (negative), after b (positive) or as equal (0).
// Days compare newest first; within a day the order is CompareWithinDay.
func (s Sorter) Compare(a, b model.Ticket) int {
	if c := s.Day(b.Date).Compare(s.Day(a.Date)); c != 0 {
		return c
	}
	return CompareWithinDay(a, b)
}

// CompareWithinDay applies the keys that break ties inside one calendar
// day: priority ascending, volume descending, then intake channel ascending.
func CompareWithinDay(a, b model.Ticket) int {
	if c := cmp.Compare(PriorityRank(a.Priority), PriorityRank(b.Priority)); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Volume.Int(), a.Volume.Int()); c != 0 {
		return c
	}
	return cmp.Compare(OpenedViaRank(a.OpenedVia), OpenedViaRank(b.OpenedVia))
}

// Sort returns a stably sorted copy of tickets.
func (s Sorter) Sort(tickets []model.Ticket) []model.Ticket {
	out := slices.Clone(tickets)
	slices.SortStableFunc(out, s.Compare)
	return out
}

// Compare orders tickets using local calendar days.
func Compare(a, b model.Ticket) int { return Default.Compare(a, b) }

// Sort returns a stably sorted copy of tickets using local calendar days.
func Sort(tickets []model.Ticket) []model.Ticket { return Default.Sort(tickets) }
