package bell

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/theme"
)

// Item wraps a bell entry for a bubbles/list.
type Item struct {
	N    model.NotificationItem
	Read bool
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return Describe(i.N) }

// Describe returns the line shown for n. The source message wins; events
// without one get a summary built from their fields.
func Describe(n model.NotificationItem) string {
	if msg := strings.TrimSpace(n.Message); msg != "" {
		return msg
	}

	switch n.Category() {
	case model.CategoryAlert:
		return strings.TrimSpace(fmt.Sprintf("Alert %s %s", n.AlertTicketNumber, n.NotificationType))
	case model.CategoryRequest:
		if n.RequestID == "" {
			return "Request updated"
		}
		return "Request " + n.RequestID + " updated"
	default:
		ref := n.TicketNumber
		if ref == "" {
			ref = n.TicketID
		}
		event := n.EventType
		if event == "" {
			event = "modified"
		}
		return strings.TrimSpace(fmt.Sprintf("%s ticket %s %s", strings.ToUpper(n.TicketType), ref, event))
	}
}

func categoryLabel(c model.Category) string {
	switch c {
	case model.CategoryAlert:
		return "ALR"
	case model.CategoryRequest:
		return "REQ"
	default:
		return "TKT"
	}
}

// ItemDelegate implements list.ItemDelegate for bell entries.
type ItemDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single bell line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}

	cat := it.N.Category()
	label := theme.CategoryStyle(cat).Render(categoryLabel(cat))
	ago := theme.ReadStyle.Render(relativeTime(d.now(), it.N.CreatedAt))

	marker := "●"
	text := Describe(it.N)
	if it.Read {
		marker = " "
		text = theme.ReadStyle.Render(text)
	} else {
		text = theme.UnreadStyle.Render(text)
	}

	line := fmt.Sprintf("%s %s %s  %s", marker, label, text, ago)
	if index == m.Index() {
		line = "> " + line
	} else {
		line = "  " + line
	}
	fmt.Fprint(w, line)
}

// relativeTime returns a human-friendly age of t as of now.
func relativeTime(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
