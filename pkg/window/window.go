// Package window is a desktop stand-in for the Sense HAT: an 8×8 grid of
// colored cells and a Stop button that acts as the joystick middle press.
package window

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/heatgrid/pkg/button"
	"github.com/itohio/heatgrid/pkg/display"
)

var (
	_ display.Display = (*Window)(nil)
	_ button.Source   = (*Window)(nil)
)

// CellSize is the side of one LED cell in device independent pixels.
const CellSize = 40

// Window renders grids into a fyne window and reports Stop presses.
type Window struct {
	win    fyne.Window
	cells  [display.Width * display.Height]*canvas.Rectangle
	status *widget.Label
	stop   *widget.Button

	mu     sync.Mutex
	frames int
	gone   bool // window closed by the user
	closed bool // source closed
	events chan button.Event
}

// New builds the grid into win. Closing the window counts as a press, so the
// run ends the same way as with the Stop button.
func New(win fyne.Window) *Window {
	w := &Window{
		win:    win,
		events: make(chan button.Event, 4),
	}

	grid := container.NewGridWithColumns(display.Width)
	for i := range w.cells {
		r := canvas.NewRectangle(color.Black)
		r.SetMinSize(fyne.NewSize(CellSize, CellSize))
		w.cells[i] = r
		grid.Add(r)
	}

	w.status = widget.NewLabel("waiting")
	w.stop = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), w.press)

	win.SetContent(container.NewBorder(nil, container.NewHBox(w.stop, w.status), nil, nil, grid))
	win.SetFixedSize(true)
	win.SetOnClosed(func() {
		w.press()
		w.mu.Lock()
		w.gone = true
		w.mu.Unlock()
	})

	return w
}

// WriteGrid paints g on the main event loop. Once the user closed the
// window there is nothing to paint on and writes are dropped.
func (w *Window) WriteGrid(g display.Grid) error {
	w.mu.Lock()
	if w.gone {
		w.mu.Unlock()
		return nil
	}
	w.frames++
	frame := w.frames
	w.mu.Unlock()

	fyne.Do(func() {
		for i, c := range g {
			w.cells[i].FillColor = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
			w.cells[i].Refresh()
		}
		w.status.SetText(fmt.Sprintf("frame %d", frame))
	})
	return nil
}

// Events returns the Stop button events.
func (w *Window) Events() <-chan button.Event {
	return w.events
}

// Close ends the event stream. The fyne window itself belongs to the app.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.events)
	}
	return nil
}

func (w *Window) press() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	ev := button.Event{Timestamp: time.Now(), Direction: button.Middle, Action: button.Pressed}
	select {
	case w.events <- ev:
	default:
	}
}

// cell returns the color currently shown at index i.
func (w *Window) cell(i int) color.Color {
	return w.cells[i].FillColor
}
