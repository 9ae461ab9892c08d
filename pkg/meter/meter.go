// Package meter runs the acquisition and aggregation loops around a shared
// sample buffer.
package meter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/itohio/heatgrid/pkg/button"
	"github.com/itohio/heatgrid/pkg/config"
	"github.com/itohio/heatgrid/pkg/display"
	"github.com/itohio/heatgrid/pkg/sample"
	"github.com/itohio/heatgrid/pkg/sensor"
)

// Meter owns the two loops. Acquisition is the only sensor reader and
// aggregation the only display writer while the meter runs.
type Meter struct {
	acquisition config.LoopConfig
	aggregation config.LoopConfig
	retries     int
	retryDelay  time.Duration

	thermometer sensor.Thermometer
	buffer      *sample.Buffer
	mapper      *display.Mapper
	stop        *button.Coordinator
	log         logrus.FieldLogger

	callbacks []func(agg sample.Aggregate, c display.Color)
	cbMu      sync.RWMutex

	now func() time.Time
}

// New creates a meter. The mapper must already carry the calibration band.
func New(cfg *config.Config, th sensor.Thermometer, mapper *display.Mapper, stop *button.Coordinator, log logrus.FieldLogger) *Meter {
	return &Meter{
		acquisition: cfg.Acquisition,
		aggregation: cfg.Aggregation,
		retries:     max(0, cfg.Sensor.Retries),
		retryDelay:  cfg.Sensor.RetryDelay,
		thermometer: th,
		buffer:      sample.NewBuffer(cfg.Buffer.Capacity),
		mapper:      mapper,
		stop:        stop,
		log:         log.WithField("component", "meter"),
		now:         time.Now,
	}
}

// Buffer returns the shared sample buffer.
func (m *Meter) Buffer() *sample.Buffer {
	return m.buffer
}

// OnAggregate registers a callback called after every aggregation pass.
func (m *Meter) OnAggregate(callback func(agg sample.Aggregate, c display.Color)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// Run starts both loops, waits for them and marks the run terminal.
// It returns the first fatal error.
func (m *Meter) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m.log.WithField("loop", "acquisition").Info("Starting")
		return m.Acquire(ctx)
	})
	g.Go(func() error {
		m.log.WithField("loop", "aggregation").Info("Starting")
		return m.Aggregate(ctx)
	})

	err := g.Wait()
	m.stop.Finish()
	return err
}

// Acquire reads the sensor into the buffer for at most the acquisition
// budget. A read that keeps failing skips the iteration.
func (m *Meter) Acquire(ctx context.Context) error {
	log := m.log.WithField("loop", "acquisition")
	log.Info("Started")

	budget := m.acquisition.Budget
	for i := 0; i < budget; i++ {
		if m.halted(ctx) {
			log.WithField("iterations", i).Info("Stopped")
			return nil
		}

		t, err := m.read(ctx)
		switch {
		case err == nil:
			if m.buffer.Append(sample.New(t, m.now())) {
				log.Debug("Buffer full, oldest sample dropped")
			}
		case ctx.Err() != nil:
			return nil
		default:
			log.WithError(err).WithField("iteration", i).Warn("Skipping sample")
		}

		if i < budget-1 {
			m.wait(ctx, m.acquisition.Interval)
		}
	}

	log.WithField("iterations", budget).Info("Budget exhausted")
	return nil
}

// Aggregate runs aggregation passes for at most the aggregation budget and
// renders each average. A display write failure ends the run.
func (m *Meter) Aggregate(ctx context.Context) error {
	log := m.log.WithField("loop", "aggregation")
	log.Info("Started")

	budget := m.aggregation.Budget
	for i := 0; i < budget; i++ {
		if m.halted(ctx) {
			log.WithField("iterations", i).Info("Stopped")
			return nil
		}

		if err := m.aggregateOnce(); err != nil {
			return err
		}

		if i < budget-1 {
			m.wait(ctx, m.aggregation.Interval)
		}
	}

	log.WithField("iterations", budget).Info("Budget exhausted")
	return nil
}

func (m *Meter) aggregateOnce() error {
	agg := m.buffer.Aggregate()

	// A quiet pass has no first sample to stamp.
	ts := ""
	if agg.Count > 0 {
		ts = agg.Timestamp.Format(time.RFC3339Nano)
	}

	m.log.WithFields(logrus.Fields{
		"ts":      ts,
		"count":   agg.Count,
		"avg":     agg.Average,
		"evicted": agg.Evicted,
	}).Info("Aggregated")

	c, err := m.mapper.Render(agg.Average)
	if err != nil {
		return fmt.Errorf("aggregation: %w", err)
	}

	m.notify(agg, c)
	return nil
}

// read tries the sensor once plus the configured number of retries.
func (m *Meter) read(ctx context.Context) (float64, error) {
	var errs []error
	for attempt := 0; attempt <= m.retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, m.retryDelay); err != nil {
				return 0, err
			}
		}
		t, err := m.thermometer.ReadTemperature()
		if err == nil {
			return t, nil
		}
		errs = append(errs, err)
	}
	return 0, errors.Join(errs...)
}

func (m *Meter) halted(ctx context.Context) bool {
	return ctx.Err() != nil || m.stop.Stopping()
}

// wait pauses between iterations; a stop request or ctx ends it early.
func (m *Meter) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-m.stop.Done():
	case <-timer.C:
	}
}

func (m *Meter) notify(agg sample.Aggregate, c display.Color) {
	m.cbMu.RLock()
	callbacks := make([]func(sample.Aggregate, display.Color), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(agg, c)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
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
