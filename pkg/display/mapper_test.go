package display

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/heatgrid/pkg/calibrate"
)

func TestLevel(t *testing.T) {
	band := calibrate.Band{Min: 10, Max: 20}

	tests := []struct {
		name string
		avg  float64
		want int
	}{
		{name: "at min", avg: 10, want: 0},
		{name: "at max", avg: 20, want: 255},
		{name: "midpoint", avg: 15, want: 127},
		{name: "below band clamps", avg: 0, want: 0},
		{name: "above band clamps", avg: 35, want: 255},
		{name: "quarter", avg: 12.5, want: 63},
		{name: "nan", avg: math.NaN(), want: 0},
		{name: "+inf", avg: math.Inf(1), want: 255},
		{name: "-inf", avg: math.Inf(-1), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Level(tt.avg, band)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevel_Monotonic(t *testing.T) {
	band := calibrate.Band{Min: 19, Max: 21}

	prev := -1
	for avg := 18.0; avg <= 22.0; avg += 0.05 {
		level, err := Level(avg, band)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, level, prev)
		prev = level
	}
}

func TestLevel_DegenerateBand(t *testing.T) {
	_, err := Level(20, calibrate.Band{Min: 20, Max: 20})
	assert.True(t, errors.Is(err, calibrate.ErrInvalidBand))
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, Color{0, 0, 255}, ColorFor(0))
	assert.Equal(t, Color{255, 0, 0}, ColorFor(255))
	assert.Equal(t, Color{127, 0, 128}, ColorFor(127))
	assert.Equal(t, Color{0, 0, 255}, ColorFor(-10))
	assert.Equal(t, Color{255, 0, 0}, ColorFor(300))
}

func TestMapper_Render(t *testing.T) {
	mem := NewMemory()
	m, err := NewMapper(mem, calibrate.Band{Min: 10, Max: 20})
	require.NoError(t, err)

	tests := []struct {
		avg  float64
		want Color
	}{
		{avg: 10, want: Color{0, 0, 255}},
		{avg: 20, want: Color{255, 0, 0}},
		{avg: 15, want: Color{127, 0, 128}},
	}

	for _, tt := range tests {
		c, err := m.Render(tt.avg)
		require.NoError(t, err)
		assert.Equal(t, tt.want, c)
		assert.Equal(t, tt.want, m.Last())

		g, ok := mem.Last()
		require.True(t, ok)
		assert.Equal(t, Solid(tt.want), g)
	}
	assert.Len(t, mem.Grids(), 3)
}

func TestNewMapper_RejectsDegenerateBand(t *testing.T) {
	_, err := NewMapper(NewMemory(), calibrate.Band{Min: 21, Max: 21})
	assert.True(t, errors.Is(err, calibrate.ErrInvalidBand))
}

func TestMapper_WriteFailure(t *testing.T) {
	mem := NewMemory()
	m, err := NewMapper(mem, calibrate.Band{Min: 19, Max: 21})
	require.NoError(t, err)

	mem.FailOnWrite(1)
	_, err = m.Render(20)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWrite))

	// Next write succeeds again
	_, err = m.Render(20)
	assert.NoError(t, err)
}
