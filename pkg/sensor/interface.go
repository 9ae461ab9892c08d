package sensor

import "errors"

// ErrRead is wrapped by every failed temperature read.
var ErrRead = errors.New("sensor read failed")

// Thermometer defines the interface for temperature sensors (real or mocked).
type Thermometer interface {
	// ReadTemperature returns the current temperature in °C.
	ReadTemperature() (float64, error)
	Close() error
}

var (
	_ Thermometer = (*HTS221)(nil)
	_ Thermometer = (*Serial)(nil)
	_ Thermometer = (*Mock)(nil)
	_ Thermometer = (*Sequence)(nil)
)
