package ticketsort

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/noc-desk/internal/model"
)

var utc = Sorter{Location: time.UTC}

func at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

func ids(tickets []model.Ticket) []string {
	out := make([]string, len(tickets))
	for i, t := range tickets {
		out[i] = t.ID
	}
	return out
}

func TestCompareKeys(t *testing.T) {
	tests := []struct {
		name string
		a, b model.Ticket
		want int
	}{
		{
			name: "newer day first regardless of priority",
			a:    model.Ticket{Date: at(2, 1), Priority: model.PriorityLow},
			b:    model.Ticket{Date: at(1, 23), Priority: model.PriorityUrgent},
			want: -1,
		},
		{
			name: "time of day ignored within a day",
			a:    model.Ticket{Date: at(2, 1), Priority: model.PriorityUrgent},
			b:    model.Ticket{Date: at(2, 23), Priority: model.PriorityHigh},
			want: -1,
		},
		{
			name: "unknown priority after low",
			a:    model.Ticket{Date: at(2, 1), Priority: "Whenever"},
			b:    model.Ticket{Date: at(2, 1), Priority: model.PriorityLow},
			want: 1,
		},
		{
			name: "higher volume first",
			a:    model.Ticket{Date: at(2, 1), Priority: model.PriorityHigh, Volume: "900"},
			b:    model.Ticket{Date: at(2, 1), Priority: model.PriorityHigh, Volume: "1000"},
			want: 1,
		},
		{
			name: "non-numeric volume counts as zero",
			a:    model.Ticket{Date: at(2, 1), Volume: "lots"},
			b:    model.Ticket{Date: at(2, 1), Volume: "1"},
			want: 1,
		},
		{
			name: "best channel rank wins",
			a:    model.Ticket{Date: at(2, 1), OpenedVia: model.OpenedVia{"Email", "Monitoring"}},
			b:    model.Ticket{Date: at(2, 1), OpenedVia: model.OpenedVia{"AM"}},
			want: -1,
		},
		{
			name: "no channel sorts last",
			a:    model.Ticket{Date: at(2, 1)},
			b:    model.Ticket{Date: at(2, 1), OpenedVia: model.OpenedVia{"Email"}},
			want: 1,
		},
		{
			name: "equal keys",
			a:    model.Ticket{ID: "a", Date: at(2, 1), Priority: "High", Volume: "5"},
			b:    model.Ticket{ID: "b", Date: at(2, 9), Priority: "High", Volume: "5"},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, utc.Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, utc.Compare(tt.b, tt.a))
		})
	}
}

func randomTickets(r *rand.Rand, n int) []model.Ticket {
	priorities := []string{"Urgent", "High", "Medium", "Low", "???"}
	channels := []string{"Monitoring", "AM", "Teams", "Email", "Fax"}
	out := make([]model.Ticket, n)
	for i := range out {
		var via model.OpenedVia
		for j := 0; j < r.Intn(3); j++ {
			via = append(via, channels[r.Intn(len(channels))])
		}
		out[i] = model.Ticket{
			ID:        fmt.Sprintf("t%02d", i),
			Date:      at(1+r.Intn(4), r.Intn(24)),
			Priority:  priorities[r.Intn(len(priorities))],
			Volume:    model.Volume(fmt.Sprint(r.Intn(3) * 100)),
			OpenedVia: via,
		}
	}
	return out
}

func TestCompareAntisymmetric(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	tickets := randomTickets(r, 40)
	for _, a := range tickets {
		for _, b := range tickets {
			assert.Equal(t, utc.Compare(a, b), -utc.Compare(b, a), "%s vs %s", a.ID, b.ID)
		}
	}
}

func TestSortStableForEqualKeys(t *testing.T) {
	base := []model.Ticket{
		{ID: "x1", Date: at(3, 1), Priority: "High", Volume: "10"},
		{ID: "x2", Date: at(3, 5), Priority: "High", Volume: "10"},
		{ID: "x3", Date: at(3, 9), Priority: "High", Volume: "10"},
	}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		in := append([]model.Ticket(nil), base...)
		r.Shuffle(len(in), func(a, b int) { in[a], in[b] = in[b], in[a] })
		assert.Equal(t, ids(in), ids(utc.Sort(in)), "equal keys keep input order")
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	in := []model.Ticket{
		{ID: "old", Date: at(1, 1)},
		{ID: "new", Date: at(2, 1)},
	}
	out := utc.Sort(in)
	assert.Equal(t, []string{"new", "old"}, ids(out))
	assert.Equal(t, []string{"old", "new"}, ids(in))
}

func TestGroupMatchesFlatSort(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 25; round++ {
		tickets := randomTickets(r, 30)
		groups := utc.GroupByCalendarDay(tickets)
		assert.Equal(t, ids(utc.Sort(tickets)), ids(Flatten(groups)), "round %d", round)

		for i := 1; i < len(groups); i++ {
			assert.True(t, groups[i-1].Day.After(groups[i].Day))
		}
	}
}

func TestGroupLabels(t *testing.T) {
	groups := utc.GroupByCalendarDay([]model.Ticket{
		{ID: "a", Date: at(1, 8)},
		{ID: "b", Date: at(4, 8)},
		{ID: "c", Date: at(1, 20)},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "Mon, 04 Mar 2024", groups[0].Label)
	assert.Equal(t, []string{"b"}, ids(groups[0].Tickets))
	assert.Equal(t, "Fri, 01 Mar 2024", groups[1].Label)
	assert.Equal(t, []string{"a", "c"}, ids(groups[1].Tickets))
}

func TestGroupEmpty(t *testing.T) {
	assert.Empty(t, utc.GroupByCalendarDay(nil))
	assert.Empty(t, Flatten(nil))
}
