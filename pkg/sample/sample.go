package sample

import (
	"math"
	"time"
)

// ChannelTemperature identifies temperature samples.
const ChannelTemperature = "temperature"

// Precision is the number of fraction digits kept from a sensor reading.
const Precision = 1

// Sample represents one timestamped sensor reading.
type Sample struct {
	Channel   string
	Value     float64 // °C, rounded to Precision digits
	Timestamp time.Time
	Consumed  bool // already folded into an average
}

// New creates an unconsumed temperature sample from a raw reading.
func New(value float64, ts time.Time) Sample {
	return Sample{
		Channel:   ChannelTemperature,
		Value:     Round(value, Precision),
		Timestamp: ts,
	}
}

// Round rounds v half away from zero to the given number of fraction digits.
func Round(v float64, digits int) float64 {
	scale := math.Pow10(digits)
	return math.Round(v*scale) / scale
}
