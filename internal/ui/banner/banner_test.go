package banner

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/noc-desk/internal/model"
)

var now = time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

func TestLine(t *testing.T) {
	since := now.Add(-12 * time.Minute)
	line := Line(model.BannerItem{
		Priority:     model.PriorityUrgent,
		TicketNumber: "#20240614abcd1234",
		TicketType:   model.KindVoice,
		Customer:     "Acme",
		Message:      "Unassigned for 12 min",
		WaitingSince: &since,
	}, now)

	assert.Contains(t, line, "Urgent")
	assert.Contains(t, line, "#20240614abcd1234 [VOICE] Acme: Unassigned for 12 min (12m)")
}

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "", Render("Unassigned", "1", nil, 80, now))
}

func TestRenderSummarizesOverflow(t *testing.T) {
	var items []model.BannerItem
	for _, n := range []string{"#1", "#2", "#3", "#4", "#5"} {
		items = append(items, model.BannerItem{ID: n, TicketNumber: n, Priority: model.PriorityLow})
	}

	out := Render("Reminders", "2", items, 80, now)
	assert.Contains(t, out, "Reminders (5)")
	assert.Contains(t, out, "#3")
	assert.NotContains(t, out, "#4")
	assert.Contains(t, out, "+2 more")
	assert.Equal(t, Height(len(items)), strings.Count(out, "\n")+1)
}

func TestMostPressing(t *testing.T) {
	items := []model.BannerItem{
		{Priority: model.PriorityLow},
		{Priority: model.PriorityHigh},
		{Priority: "Whenever"},
	}
	assert.Equal(t, model.PriorityHigh, mostPressing(items))
}
