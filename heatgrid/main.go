package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/itohio/heatgrid/pkg/button"
	"github.com/itohio/heatgrid/pkg/calibrate"
	"github.com/itohio/heatgrid/pkg/config"
	"github.com/itohio/heatgrid/pkg/display"
	"github.com/itohio/heatgrid/pkg/logging"
	"github.com/itohio/heatgrid/pkg/meter"
	"github.com/itohio/heatgrid/pkg/sensor"
	"github.com/itohio/heatgrid/pkg/window"
)

func main() {
	var (
		configFlag    = flag.String("config", "heatgrid.yaml", "Configuration file path")
		mockFlag      = flag.Bool("mock", false, "Use simulated sensor instead of hardware")
		displayFlag   = flag.String("display", "", "Display driver override (framebuffer, console, window, none)")
		logLevelFlag  = flag.String("log-level", "", "Log level override (debug, info, warn, error)")
		listPortsFlag = flag.Bool("list-ports", false, "List serial ports and exit")
	)
	flag.Parse()

	if *listPortsFlag {
		if err := listPorts(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Command line overrides, validated together with the file
	if *mockFlag {
		cfg.Sensor.Driver = config.SensorMock
	}
	if *displayFlag != "" {
		cfg.Display.Driver = *displayFlag
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = *logLevelFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	var (
		win    *window.Window
		uiLoop func()
	)
	if cfg.Display.Driver == config.DisplayWindow {
		win, uiLoop = newDesktop(cfg)
	}

	dev, err := openDevices(cfg, log, win)
	if err != nil {
		log.WithError(err).Error("Failed to open devices")
		os.Exit(1)
	}

	if uiLoop == nil {
		err = run(context.Background(), cfg, log, dev)
	} else {
		// fyne owns the main goroutine; the window stays up with the done
		// sign until the user closes it.
		result := make(chan error, 1)
		go func() { result <- run(context.Background(), cfg, log, dev) }()
		uiLoop()
		err = <-result
	}

	if cerr := dev.Close(); cerr != nil {
		log.WithError(cerr).Warn("Failed to close devices")
	}
	if err != nil {
		log.WithError(err).Error("Program failed")
		os.Exit(1)
	}
	log.Info("Program finished")
}

// run wires the pipeline: calibration first, then both loops, then the
// done sign once they have exited. A stop is never an error: it ends the
// run early and still shows the done sign.
func run(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, dev *devices) error {
	stop := button.NewCoordinator(log)

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	for _, src := range dev.sources {
		stop.Watch(watchCtx, src)
	}

	// A press during calibration aborts it.
	calCtx, cancelCal := context.WithCancel(ctx)
	go func() {
		select {
		case <-stop.Done():
			cancelCal()
		case <-calCtx.Done():
		}
	}()

	calibrator := calibrate.New(cfg.Calibration, dev.thermometer, log)
	band, err := calibrator.Calibrate(calCtx)
	cancelCal()
	if err != nil {
		if errors.Is(err, context.Canceled) && stop.Stopping() {
			log.Info("Stopped during calibration")
			stop.Finish()
			return showDone(dev.display)
		}
		return fmt.Errorf("calibration failed: %w", err)
	}

	mapper, err := display.NewMapper(dev.display, band)
	if err != nil {
		return fmt.Errorf("calibration band unusable: %w", err)
	}

	m := meter.New(cfg, dev.thermometer, mapper, stop, log)
	if err := m.Run(ctx); err != nil {
		return err
	}

	buf := m.Buffer()
	log.WithFields(logrus.Fields{
		"appended": buf.Appended(),
		"dropped":  buf.Dropped(),
		"state":    stop.State(),
	}).Info("Loops finished")

	return showDone(dev.display)
}

func showDone(d display.Display) error {
	if err := d.WriteGrid(display.DoneSign()); err != nil {
		return fmt.Errorf("done sign: %w", err)
	}
	return nil
}

func listPorts() error {
	ports, err := sensor.Ports()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Println(p.Name)
	}
	return nil
}
