// Package display renders temperature averages onto the 8×8 LED grid and
// provides the grid backends (Sense HAT framebuffer, console, memory).
package display

import "errors"

// Grid dimensions of the Sense HAT LED matrix.
const (
	Width  = 8
	Height = 8
)

// ErrWrite is wrapped by every failed grid write.
var ErrWrite = errors.New("display write failed")

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// Grid is a row-major Width×Height image.
type Grid [Width * Height]Color

// At returns the color at column x, row y.
func (g *Grid) At(x, y int) Color {
	return g[y*Width+x]
}

// Display accepts full grids.
type Display interface {
	WriteGrid(g Grid) error
	Close() error
}

var (
	_ Display = (*Framebuffer)(nil)
	_ Display = (*Console)(nil)
	_ Display = (*Memory)(nil)
)

// Solid returns a grid filled with c.
func Solid(c Color) Grid {
	var g Grid
	for i := range g {
		g[i] = c
	}
	return g
}

var (
	green = Color{0, 127, 0}
	red   = Color{127, 0, 0}
)

// DoneSign is the terminal image shown once both loops have exited: a red
// ring on a green field.
func DoneSign() Grid {
	const pattern = "" +
		"GGGGGGGG" +
		"GGGRRGGG" +
		"GGRGGRGG" +
		"GRGGGGRG" +
		"GRGGGGRG" +
		"GGRGGRGG" +
		"GGGRRGGG" +
		"GGGGGGGG"

	var g Grid
	for i, ch := range pattern {
		if ch == 'R' {
			g[i] = red
		} else {
			g[i] = green
		}
	}
	return g
}
