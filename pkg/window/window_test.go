package window

import (
	"image/color"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/heatgrid/pkg/button"
	"github.com/itohio/heatgrid/pkg/display"
	"github.com/itohio/heatgrid/pkg/logging"
)

func newTestWindow(t *testing.T) *Window {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	return New(test.NewWindow(nil))
}

func TestWindow_WriteGrid(t *testing.T) {
	w := newTestWindow(t)

	require.NoError(t, w.WriteGrid(display.DoneSign()))

	done := display.DoneSign()
	for i, want := range done {
		assert.Equal(t, color.NRGBA{R: want.R, G: want.G, B: want.B, A: 0xFF}, w.cell(i), "cell %d", i)
	}
	assert.Equal(t, "frame 1", w.status.Text)

	require.NoError(t, w.WriteGrid(display.Solid(display.Color{R: 255})))
	assert.Equal(t, color.NRGBA{R: 255, A: 0xFF}, w.cell(27))
	assert.Equal(t, "frame 2", w.status.Text)
}

func TestWindow_StopButtonIsMiddlePress(t *testing.T) {
	w := newTestWindow(t)

	test.Tap(w.stop)

	select {
	case ev := <-w.Events():
		assert.Equal(t, button.Middle, ev.Direction)
		assert.Equal(t, button.Pressed, ev.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("no event from Stop button")
	}
}

func TestWindow_ClosingWindowStops(t *testing.T) {
	w := newTestWindow(t)

	w.win.Close()

	select {
	case ev := <-w.Events():
		assert.Equal(t, button.Pressed, ev.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("closing the window did not press Stop")
	}

	// Nothing left to paint on
	require.NoError(t, w.WriteGrid(display.Solid(display.Color{B: 255})))
	assert.Equal(t, "waiting", w.status.Text)
}

func TestWindow_CloseEndsEvents(t *testing.T) {
	w := newTestWindow(t)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Events()
	assert.False(t, ok)

	// Presses after Close are ignored
	test.Tap(w.stop)
}

func TestWindow_DrivesCoordinator(t *testing.T) {
	w := newTestWindow(t)
	c := button.NewCoordinator(logging.Discard())
	c.Watch(t.Context(), w)

	test.Tap(w.stop)

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not see the Stop button")
	}
	assert.Equal(t, button.Stopping, c.State())
}
