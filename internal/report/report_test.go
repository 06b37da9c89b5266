package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/report"
	"github.com/nhle/noc-desk/tests/testutil"
)

var base = time.Date(2024, 6, 14, 9, 0, 0, 0, time.UTC)

func TestSummarizeCounts(t *testing.T) {
	sms := []model.Ticket{
		testutil.NewTicket(base),
		testutil.NewTicket(base, testutil.AssignedTo("u1"), func(t *model.Ticket) { t.Priority = model.PriorityUrgent }),
	}
	voice := []model.Ticket{
		testutil.NewTicket(base, func(t *model.Ticket) {
			t.Kind = model.KindVoice
			t.Status = model.StatusResolved
		}),
	}

	s := report.Summarize(sms, voice)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.ByKind[model.KindSMS])
	assert.Equal(t, 1, s.ByKind[model.KindVoice])

	assert.Equal(t, 1, report.Get(s.ByStatus, model.StatusUnassigned))
	assert.Equal(t, 1, report.Get(s.ByStatus, model.StatusAssigned))
	assert.Equal(t, 1, report.Get(s.ByStatus, model.StatusResolved))
	assert.Equal(t, 0, report.Get(s.ByStatus, model.StatusAwaitingAM))
	assert.Equal(t, 2, report.Get(s.ByPriority, model.PriorityMedium))
	assert.Equal(t, 1, report.Get(s.ByPriority, model.PriorityUrgent))

	require.Len(t, s.ByStatus, len(model.Statuses))
	assert.Equal(t, model.StatusUnassigned, s.ByStatus[0].Label)
}

func TestSummarizeKeepsUnknownValues(t *testing.T) {
	odd := testutil.NewTicket(base, func(t *model.Ticket) { t.Status = "Escalated" })
	s := report.Summarize([]model.Ticket{odd}, nil)

	last := s.ByStatus[len(s.ByStatus)-1]
	assert.Equal(t, report.Count{Label: "Escalated", N: 1}, last)
}

func TestSummarizeRecentNewestFirst(t *testing.T) {
	var sms []model.Ticket
	for i := range 15 {
		sms = append(sms, testutil.NewTicket(base.Add(time.Duration(i)*time.Hour)))
	}

	s := report.Summarize(sms, nil)
	require.Len(t, s.Recent, report.RecentLimit)
	assert.Equal(t, sms[14].ID, s.Recent[0].ID)
	assert.Equal(t, sms[5].ID, s.Recent[9].ID)
}

func TestSummarizeEmpty(t *testing.T) {
	s := report.Summarize(nil, nil)
	assert.Zero(t, s.Total)
	assert.Empty(t, s.Recent)
	assert.Equal(t, 0, report.Get(s.ByPriority, model.PriorityLow))
}
