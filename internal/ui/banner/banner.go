// Package banner renders the unassigned-alert and assigned-reminder strips
// shown above the panes.
package banner

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/theme"
	"github.com/nhle/noc-desk/internal/ticketsort"
)

// MaxLines caps how many items one banner lists before summarizing the rest.
const MaxLines = 3

// Line formats one banner item.
func Line(item model.BannerItem, now time.Time) string {
	var b strings.Builder
	b.WriteString(theme.PriorityStyle(item.Priority).Render(item.Priority))
	if item.TicketNumber != "" {
		b.WriteString(" " + item.TicketNumber)
	}
	if item.TicketType != "" {
		b.WriteString(" [" + strings.ToUpper(string(item.TicketType)) + "]")
	}
	if item.Customer != "" {
		b.WriteString(" " + item.Customer)
	}
	if item.Message != "" {
		b.WriteString(": " + item.Message)
	}
	if item.WaitingSince != nil {
		fmt.Fprintf(&b, " (%dm)", int(now.Sub(*item.WaitingSince).Minutes()))
	}
	return b.String()
}

// mostPressing returns the highest priority among items.
func mostPressing(items []model.BannerItem) string {
	best := ""
	for _, it := range items {
		if best == "" || ticketsort.PriorityRank(it.Priority) < ticketsort.PriorityRank(best) {
			best = it.Priority
		}
	}
	return best
}

// Render draws a banner, or returns "" when there is nothing to show.
func Render(title, dismissKey string, items []model.BannerItem, width int, now time.Time) string {
	if len(items) == 0 {
		return ""
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s (%d)", title, len(items))) +
			theme.HelpStyle.Render("  "+dismissKey+" dismiss"),
	}
	for i, it := range items {
		if i == MaxLines {
			lines = append(lines, theme.HelpStyle.Render(fmt.Sprintf("+%d more", len(items)-MaxLines)))
			break
		}
		lines = append(lines, Line(it, now))
	}

	return theme.BannerStyle.
		BorderForeground(theme.PriorityColor(mostPressing(items))).
		Width(max(width-2, 10)).
		Render(strings.Join(lines, "\n"))
}

// Height returns the number of lines Render uses for n items.
func Height(n int) int {
	if n == 0 {
		return 0
	}
	return 1 + min(n, MaxLines+1)
}
