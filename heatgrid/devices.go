package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/itohio/heatgrid/pkg/button"
	"github.com/itohio/heatgrid/pkg/config"
	"github.com/itohio/heatgrid/pkg/display"
	"github.com/itohio/heatgrid/pkg/sensor"
	"github.com/itohio/heatgrid/pkg/window"
)

// devices holds everything the pipeline talks to.
type devices struct {
	thermometer sensor.Thermometer
	display     display.Display
	sources     []button.Source
}

// openDevices opens the configured backends. win is the emulator window
// when the window display is in use, nil otherwise.
func openDevices(cfg *config.Config, log logrus.FieldLogger, win *window.Window) (*devices, error) {
	th, err := openSensor(cfg, log)
	if err != nil {
		return nil, err
	}

	disp, err := openDisplay(cfg, log, win)
	if err != nil {
		th.Close()
		return nil, err
	}

	return &devices{
		thermometer: th,
		display:     disp,
		sources:     openButtons(cfg, log, win),
	}, nil
}

// Close releases every device.
func (d *devices) Close() error {
	var errs []error
	for _, src := range d.sources {
		errs = append(errs, src.Close())
	}
	errs = append(errs, d.display.Close(), d.thermometer.Close())
	return errors.Join(errs...)
}

// openSensor creates the configured temperature source.
func openSensor(cfg *config.Config, log logrus.FieldLogger) (sensor.Thermometer, error) {
	switch cfg.Sensor.Driver {
	case config.SensorHTS221:
		th, err := sensor.OpenHTS221(cfg.Sensor.I2CBus, cfg.Sensor.I2CAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to open HTS221: %w", err)
		}
		return th, nil

	case config.SensorSerial:
		s := cfg.Sensor.Serial
		probe := sensor.NewSerial(s.Port, s.BaudRate, s.StaleAfter, log)
		if err := probe.Connect(); err != nil {
			return nil, err
		}
		return probe, nil

	case config.SensorMock:
		log.Info("Using simulated sensor")
		return sensor.NewMock(&cfg.Mock), nil
	}
	return nil, fmt.Errorf("unknown sensor driver %q", cfg.Sensor.Driver)
}

// openDisplay creates the configured display backend.
func openDisplay(cfg *config.Config, log logrus.FieldLogger, win *window.Window) (display.Display, error) {
	switch cfg.Display.Driver {
	case config.DisplayFramebuffer:
		fb, err := display.OpenFramebuffer(cfg.Display.Device)
		if err != nil {
			return nil, err
		}
		return fb, nil

	case config.DisplayConsole:
		return display.NewConsole(os.Stdout), nil

	case config.DisplayWindow:
		if win == nil {
			return nil, fmt.Errorf("window display not available: build with -tags desktop")
		}
		return win, nil

	case config.DisplayNone:
		log.Info("Display disabled")
		return display.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown display driver %q", cfg.Display.Driver)
}

// openButtons returns every available stop source. OS signals are always
// watched, as is the emulator window's Stop button; a missing joystick is
// not fatal.
func openButtons(cfg *config.Config, log logrus.FieldLogger, win *window.Window) []button.Source {
	sources := []button.Source{button.NewSignals()}
	if win != nil {
		sources = append(sources, win)
	}

	if cfg.Button.Driver != config.ButtonJoystick {
		return sources
	}

	j, err := button.OpenJoystick(cfg.Button.Device, log)
	if err != nil {
		log.WithError(err).Warn("Joystick unavailable, stop with Ctrl+C")
		return sources
	}
	return append(sources, j)
}
