package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/noc-desk/internal/theme"
)

// Layout manages the dashboard dimensions: header, banners, the bell and
// ticket panes side by side, and the status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
	BannerHeight    int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// WithBanners returns a copy that reserves h lines for banners.
func (l Layout) WithBanners(h int) Layout {
	l.BannerHeight = max(h, 0)
	return l
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the panes, accounting
// for the header, banners and status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight-l.BannerHeight, 0)
}

// BellWidth is the width of the left pane.
func (l Layout) BellWidth() int {
	return l.Width * 2 / 5
}

// TicketWidth is the width of the right pane.
func (l Layout) TicketWidth() int {
	return l.Width - l.BellWidth()
}

// RenderHeader renders the top bar with a title, the bell badge and the
// sync status.
func (l Layout) RenderHeader(title, badge, syncStatus string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(syncStatus)

	gap := max(l.Width-
		lipgloss.Width(titleRendered)-
		lipgloss.Width(badge)-
		lipgloss.Width(statusRendered), 0)

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		badge,
		filler,
		statusRendered,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := max(l.Width-lipgloss.Width(rendered), 0)

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderPanes joins the bell and ticket panes side by side.
func (l Layout) RenderPanes(bell, tickets string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, bell, tickets)
}

// RenderWithFrame composes the full view. Empty sections are skipped.
func (l Layout) RenderWithFrame(sections ...string) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
