package display

import (
	"fmt"
	"math"
	"sync"

	"github.com/itohio/heatgrid/pkg/calibrate"
)

// MaxLevel is the top of the color scale.
const MaxLevel = 255

// Level maps avg into [0, MaxLevel] proportionally to its position in band.
// Values outside the band clamp to the ends; NaN maps to 0.
func Level(avg float64, band calibrate.Band) (int, error) {
	if err := band.Validate(); err != nil {
		return 0, err
	}
	if math.IsNaN(avg) {
		return 0, nil
	}

	level := math.Floor((avg - band.Min) / band.Width() * MaxLevel)
	switch {
	case level > MaxLevel:
		return MaxLevel, nil
	case level < 0:
		return 0, nil
	}
	return int(level), nil
}

// ColorFor returns the scale color: blue for cold, red for hot.
func ColorFor(level int) Color {
	level = max(0, min(MaxLevel, level))
	return Color{R: uint8(level), G: 0, B: uint8(MaxLevel - level)}
}

// Mapper turns averages into solid grids on a display.
type Mapper struct {
	display Display
	band    calibrate.Band

	mu   sync.Mutex
	last Color
}

// NewMapper validates band; a degenerate band is a fatal configuration error.
func NewMapper(d Display, band calibrate.Band) (*Mapper, error) {
	if err := band.Validate(); err != nil {
		return nil, err
	}
	return &Mapper{display: d, band: band}, nil
}

// Band returns the calibration band in use.
func (m *Mapper) Band() calibrate.Band {
	return m.band
}

// Render paints the whole grid with the color for avg.
func (m *Mapper) Render(avg float64) (Color, error) {
	level, err := Level(avg, m.band)
	if err != nil {
		return Color{}, err
	}
	c := ColorFor(level)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.display.WriteGrid(Solid(c)); err != nil {
		return Color{}, fmt.Errorf("render %.2f: %w", avg, err)
	}
	m.last = c
	return c, nil
}

// Last returns the most recently rendered color.
func (m *Mapper) Last() Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
