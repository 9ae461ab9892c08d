// Package calibrate derives the baseline temperature band the display maps
// readings against. Calibration runs once, before any measurement loop.
package calibrate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/itohio/heatgrid/pkg/config"
	"github.com/itohio/heatgrid/pkg/sensor"
)

// Calibrator averages a few sensor readings into a Band.
type Calibrator struct {
	name      string
	cycles    int
	interval  time.Duration
	tolerance float64

	thermometer sensor.Thermometer
	log         logrus.FieldLogger

	callbacks []func(cycle int, mean float64)
	cbMu      sync.RWMutex
}

// New creates a Calibrator reading from th.
func New(cfg config.CalibrationConfig, th sensor.Thermometer, log logrus.FieldLogger) *Calibrator {
	cycles := cfg.Cycles
	if cycles <= 0 {
		cycles = 1
	}
	return &Calibrator{
		name:        cfg.Name,
		cycles:      cycles,
		interval:    cfg.Interval,
		tolerance:   cfg.Tolerance,
		thermometer: th,
		log:         log.WithField("component", "calibration"),
	}
}

// OnProgress registers a callback receiving the running mean after each cycle.
func (c *Calibrator) OnProgress(callback func(cycle int, mean float64)) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.callbacks = append(c.callbacks, callback)
}

// Calibrate samples the sensor and returns the band around the mean.
// Any sensor failure aborts calibration: there is no valid band without it.
func (c *Calibrator) Calibrate(ctx context.Context) (Band, error) {
	c.log.Infof("Calibrating %s", c.name)

	var sum float64
	for cycle := 1; cycle <= c.cycles; cycle++ {
		if cycle > 1 {
			if err := wait(ctx, c.interval); err != nil {
				return Band{}, fmt.Errorf("calibration interrupted: %w", err)
			}
		}

		t, err := c.thermometer.ReadTemperature()
		if err != nil {
			return Band{}, fmt.Errorf("calibration cycle %d: %w", cycle, err)
		}

		sum += t
		mean := sum / float64(cycle)
		c.log.WithFields(logrus.Fields{"cycle": cycle, "mean": mean}).Info("Calibration progress")
		c.notify(cycle, mean)
	}

	mean := sum / float64(c.cycles)
	band := NewBand(mean, c.tolerance)
	if err := band.Validate(); err != nil {
		return Band{}, err
	}

	c.log.WithFields(logrus.Fields{
		"avg": mean,
		"min": band.Min,
		"max": band.Max,
	}).Info("Calibration done")

	return band, nil
}

func (c *Calibrator) notify(cycle int, mean float64) {
	c.cbMu.RLock()
	callbacks := make([]func(int, float64), len(c.callbacks))
	copy(callbacks, c.callbacks)
	c.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(cycle, mean)
		}
	}
}

// wait sleeps for d unless ctx ends first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
