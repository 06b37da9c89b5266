package ticketsort

import (
	"slices"
	"time"

	"github.com/nhle/noc-desk/internal/model"
)

// dayLabelLayout formats group headers.
const dayLabelLayout = "Mon, 02 Jan 2006"

// DayGroup is one calendar day of tickets.
type DayGroup struct {
	Day     time.Time
	Label   string
	Tickets []model.Ticket
}

// GroupByCalendarDay buckets tickets by calendar day, newest day first, and
// sorts each bucket with CompareWithinDay. Concatenating the groups yields
// exactly Sort(tickets).
func (s Sorter) GroupByCalendarDay(tickets []model.Ticket) []DayGroup {
	index := make(map[string]int)
	var groups []DayGroup

	// Walking the input in order keeps each bucket in input order, so the
	// stable in-bucket sort matches the stable flat sort.
	for _, t := range tickets {
		day := s.Day(t.Date)
		key := day.Format(time.DateOnly)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Day: day, Label: day.Format(dayLabelLayout)})
		}
		groups[i].Tickets = append(groups[i].Tickets, t)
	}

	slices.SortFunc(groups, func(a, b DayGroup) int {
		return b.Day.Compare(a.Day)
	})
	for i := range groups {
		slices.SortStableFunc(groups[i].Tickets, CompareWithinDay)
	}
	return groups
}

// GroupByCalendarDay groups tickets by local calendar day.
func GroupByCalendarDay(tickets []model.Ticket) []DayGroup {
	return Default.GroupByCalendarDay(tickets)
}

// Flatten concatenates groups in order.
func Flatten(groups []DayGroup) []model.Ticket {
	var out []model.Ticket
	for _, g := range groups {
		out = append(out, g.Tickets...)
	}
	return out
}
