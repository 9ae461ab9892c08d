package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Console draws the grid in a terminal, two columns per LED.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *lipgloss.Renderer
	frames   int
}

// NewConsole creates a console display writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{
		w:        w,
		renderer: lipgloss.NewRenderer(w),
	}
}

// WriteGrid prints one frame.
func (c *Console) WriteGrid(g Grid) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sb strings.Builder
	for y := range Height {
		for x := range Width {
			px := g.At(x, y)
			style := c.renderer.NewStyle().
				Background(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", px.R, px.G, px.B)))
			sb.WriteString(style.Render("  "))
		}
		sb.WriteByte('\n')
	}

	c.frames++
	caption := c.renderer.NewStyle().Faint(true).Render(fmt.Sprintf("frame %d", c.frames))
	sb.WriteString(caption)
	sb.WriteByte('\n')

	if _, err := io.WriteString(c.w, sb.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Close is a no-op.
func (c *Console) Close() error {
	return nil
}
