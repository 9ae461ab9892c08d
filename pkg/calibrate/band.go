package calibrate

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBand reports a band that cannot normalize readings, e.g. after
// calibrating against a stuck sensor.
var ErrInvalidBand = errors.New("invalid calibration band")

// Band is the tolerance range around the calibrated baseline.
type Band struct {
	Min float64
	Max float64
}

// NewBand returns {mean - tolerance, mean + tolerance}.
func NewBand(mean, tolerance float64) Band {
	return Band{
		Min: mean - tolerance,
		Max: mean + tolerance,
	}
}

// Width returns Max - Min.
func (b Band) Width() float64 {
	return b.Max - b.Min
}

// Validate checks that the band is finite and non-degenerate.
func (b Band) Validate() error {
	if math.IsNaN(b.Min) || math.IsNaN(b.Max) || math.IsInf(b.Min, 0) || math.IsInf(b.Max, 0) {
		return fmt.Errorf("%w: non-finite bounds [%g, %g]", ErrInvalidBand, b.Min, b.Max)
	}
	if b.Max <= b.Min {
		return fmt.Errorf("%w: max %g must be greater than min %g", ErrInvalidBand, b.Max, b.Min)
	}
	return nil
}

func (b Band) String() string {
	return fmt.Sprintf("[%.2f, %.2f]", b.Min, b.Max)
}
