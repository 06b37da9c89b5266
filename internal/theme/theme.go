package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/noc-desk/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps the bell and ticket panes.
var PanelStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// BannerStyle frames an alert or reminder banner. The border takes the
// color of the most pressing item shown.
var BannerStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.ThickBorder(), false, false, false, true)

// UnreadStyle marks unread bell entries.
var UnreadStyle = lipgloss.NewStyle().Bold(true)

// ReadStyle dims bell entries that were already read.
var ReadStyle = lipgloss.NewStyle().Foreground(ColorGray)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle is used for validation and transport errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed).
	Bold(true)

// StatusStyle returns a color-coded style for a ticket status.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.StatusUnassigned:
		return base.Foreground(ColorRed)
	case model.StatusAssigned:
		return base.Foreground(ColorBlue)
	case model.StatusAwaitingVendor, model.StatusAwaitingClient, model.StatusAwaitingAM:
		return base.Foreground(ColorYellow)
	case model.StatusResolved:
		return base.Foreground(ColorGreen)
	case model.StatusUnresolved:
		return base.Foreground(ColorMagenta)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityColor returns the color for a ticket priority.
func PriorityColor(priority string) lipgloss.AdaptiveColor {
	switch priority {
	case model.PriorityUrgent:
		return ColorRed
	case model.PriorityHigh:
		return ColorOrange
	case model.PriorityMedium:
		return ColorYellow
	case model.PriorityLow:
		return ColorBlue
	default:
		return ColorGray
	}
}

// PriorityStyle returns a color-coded style for a ticket priority.
func PriorityStyle(priority string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(PriorityColor(priority))
}

// BadgeStyle colors the bell badge by the category of unread items it
// counts for: alert red, ticket change yellow, request blue.
func BadgeStyle(cat model.Category) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#FFFFFF"))

	switch cat {
	case model.CategoryAlert:
		return base.Background(ColorRed)
	case model.CategoryTicket:
		return base.Background(ColorYellow)
	case model.CategoryRequest:
		return base.Background(ColorBlue)
	default:
		return base.Background(ColorSubtle)
	}
}

// CategoryStyle returns the label style for a bell entry's category.
func CategoryStyle(cat model.Category) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch cat {
	case model.CategoryAlert:
		return base.Foreground(ColorRed)
	case model.CategoryTicket:
		return base.Foreground(ColorYellow)
	case model.CategoryRequest:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}
