//go:build desktop

package main

import (
	"fyne.io/fyne/v2/app"

	"github.com/itohio/heatgrid/pkg/config"
	"github.com/itohio/heatgrid/pkg/window"
)

// newDesktop opens the emulator window. The returned loop must run on the
// main goroutine and returns once the window is closed.
func newDesktop(cfg *config.Config) (*window.Window, func()) {
	a := app.NewWithID("com.itohio.heatgrid")
	fw := a.NewWindow("heatgrid - " + cfg.Calibration.Name)
	w := window.New(fw)
	fw.Show()
	return w, a.Run
}
