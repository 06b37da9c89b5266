package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutHeights(t *testing.T) {
	l := NewLayout(100, 40)
	assert.Equal(t, 38, l.ContentHeight())

	l = l.WithBanners(6)
	assert.Equal(t, 32, l.ContentHeight())

	tiny := NewLayout(10, 3).WithBanners(8)
	assert.Equal(t, 0, tiny.ContentHeight())
}

func TestLayoutPaneWidths(t *testing.T) {
	l := NewLayout(101, 40)
	assert.Equal(t, 40, l.BellWidth())
	assert.Equal(t, 61, l.TicketWidth())
	assert.Equal(t, l.Width, l.BellWidth()+l.TicketWidth())
}

func TestRenderWithFrameSkipsEmpty(t *testing.T) {
	l := NewLayout(20, 10)
	assert.Equal(t, "a\nb", l.RenderWithFrame("a", "", "b"))
}
