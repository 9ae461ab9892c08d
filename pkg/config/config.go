package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Sensor drivers.
const (
	SensorHTS221 = "hts221"
	SensorSerial = "serial"
	SensorMock   = "mock"
)

// Display drivers.
const (
	DisplayFramebuffer = "framebuffer"
	DisplayConsole     = "console"
	DisplayWindow      = "window"
	DisplayNone        = "none"
)

// Button drivers.
const (
	ButtonJoystick = "joystick"
	ButtonSignal   = "signal"
)

// Config represents the application configuration.
type Config struct {
	Sensor      SensorConfig      `yaml:"sensor"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Acquisition LoopConfig        `yaml:"acquisition"`
	Aggregation LoopConfig        `yaml:"aggregation"`
	Buffer      BufferConfig      `yaml:"buffer"`
	Display     DisplayConfig     `yaml:"display"`
	Button      ButtonConfig      `yaml:"button"`
	Mock        MockConfig        `yaml:"mock"`
	Log         LogConfig         `yaml:"log"`
}

// SensorConfig selects and configures the temperature sensor backend.
type SensorConfig struct {
	Driver     string        `yaml:"driver"`
	I2CBus     string        `yaml:"i2c_bus"` // empty selects the first bus
	I2CAddr    uint16        `yaml:"i2c_addr"`
	Retries    int           `yaml:"retries"`     // extra read attempts per acquisition iteration
	RetryDelay time.Duration `yaml:"retry_delay"` // pause between attempts
	Serial     SerialConfig  `yaml:"serial"`
}

// SerialConfig contains serial probe configuration.
type SerialConfig struct {
	Port       string        `yaml:"port"`
	BaudRate   int           `yaml:"baud_rate"`
	StaleAfter time.Duration `yaml:"stale_after"` // readings older than this are rejected
}

// CalibrationConfig contains baseline calibration parameters.
type CalibrationConfig struct {
	Name      string        `yaml:"name"`
	Cycles    int           `yaml:"cycles"`
	Interval  time.Duration `yaml:"interval"`
	Tolerance float64       `yaml:"tolerance"` // half width of the band, °C
}

// LoopConfig paces one of the measurement loops.
type LoopConfig struct {
	Interval time.Duration `yaml:"interval"`
	Budget   int           `yaml:"budget"` // maximum number of iterations
}

// BufferConfig bounds the shared sample buffer.
type BufferConfig struct {
	Capacity int `yaml:"capacity"` // 0 = unbounded
}

// DisplayConfig selects the LED grid backend.
type DisplayConfig struct {
	Driver string `yaml:"driver"`
	Device string `yaml:"device"` // framebuffer path, empty to auto-detect
}

// ButtonConfig selects the stop button source.
type ButtonConfig struct {
	Driver string `yaml:"driver"`
	Device string `yaml:"device"` // evdev path, empty to auto-detect
}

// MockConfig contains simulated sensor configuration.
type MockConfig struct {
	Base       float64 `yaml:"base"`        // starting temperature (°C)
	Drift      float64 `yaml:"drift"`       // °C per second
	NoiseLevel float64 `yaml:"noise_level"` // peak noise amplitude (°C)
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Sensor: SensorConfig{
			Driver:     SensorHTS221,
			I2CAddr:    0x5F,
			Retries:    2,
			RetryDelay: 50 * time.Millisecond,
			Serial: SerialConfig{
				Port:       "/dev/ttyACM0",
				BaudRate:   115200,
				StaleAfter: 2 * time.Second,
			},
		},
		Calibration: CalibrationConfig{
			Name:      "SenseHat-Temp",
			Cycles:    5,
			Interval:  time.Second,
			Tolerance: 1.0,
		},
		Acquisition: LoopConfig{
			Interval: 500 * time.Millisecond,
			Budget:   500,
		},
		Aggregation: LoopConfig{
			Interval: 5 * time.Second,
			Budget:   50,
		},
		Buffer: BufferConfig{
			Capacity: 4096,
		},
		Display: DisplayConfig{
			Driver: DisplayFramebuffer,
		},
		Button: ButtonConfig{
			Driver: ButtonJoystick,
		},
		Mock: MockConfig{
			Base:       21.5,
			Drift:      0.01,
			NoiseLevel: 0.2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values. The result is not validated:
// callers apply their overrides first and then call Validate.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	var errs []error

	switch c.Sensor.Driver {
	case SensorHTS221, SensorSerial, SensorMock:
	default:
		errs = append(errs, fmt.Errorf("unknown sensor driver %q", c.Sensor.Driver))
	}
	if c.Sensor.Retries < 0 {
		errs = append(errs, fmt.Errorf("sensor.retries must be >= 0, got %d", c.Sensor.Retries))
	}

	if c.Calibration.Cycles <= 0 {
		errs = append(errs, fmt.Errorf("calibration.cycles must be positive, got %d", c.Calibration.Cycles))
	}
	if c.Calibration.Interval < 0 {
		errs = append(errs, fmt.Errorf("calibration.interval must be >= 0, got %s", c.Calibration.Interval))
	}
	if c.Calibration.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("calibration.tolerance must be positive, got %g", c.Calibration.Tolerance))
	}

	for name, loop := range map[string]LoopConfig{"acquisition": c.Acquisition, "aggregation": c.Aggregation} {
		if loop.Budget <= 0 {
			errs = append(errs, fmt.Errorf("%s.budget must be positive, got %d", name, loop.Budget))
		}
		if loop.Interval <= 0 {
			errs = append(errs, fmt.Errorf("%s.interval must be positive, got %s", name, loop.Interval))
		}
	}

	if c.Buffer.Capacity < 0 {
		errs = append(errs, fmt.Errorf("buffer.capacity must be >= 0, got %d", c.Buffer.Capacity))
	}

	switch c.Display.Driver {
	case DisplayFramebuffer, DisplayConsole, DisplayWindow, DisplayNone:
	default:
		errs = append(errs, fmt.Errorf("unknown display driver %q", c.Display.Driver))
	}

	switch c.Button.Driver {
	case ButtonJoystick, ButtonSignal:
	default:
		errs = append(errs, fmt.Errorf("unknown button driver %q", c.Button.Driver))
	}

	return errors.Join(errs...)
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Sensor.Driver == "" {
		c.Sensor.Driver = def.Sensor.Driver
	}
	if c.Sensor.I2CAddr == 0 {
		c.Sensor.I2CAddr = def.Sensor.I2CAddr
	}
	if c.Sensor.Serial.Port == "" {
		c.Sensor.Serial.Port = def.Sensor.Serial.Port
	}
	if c.Sensor.Serial.BaudRate == 0 {
		c.Sensor.Serial.BaudRate = def.Sensor.Serial.BaudRate
	}
	if c.Sensor.Serial.StaleAfter == 0 {
		c.Sensor.Serial.StaleAfter = def.Sensor.Serial.StaleAfter
	}

	if c.Calibration.Name == "" {
		c.Calibration.Name = def.Calibration.Name
	}
	if c.Calibration.Cycles == 0 {
		c.Calibration.Cycles = def.Calibration.Cycles
	}
	if c.Calibration.Tolerance == 0 {
		c.Calibration.Tolerance = def.Calibration.Tolerance
	}

	// Loop settings start from Default() before decoding, so a zero here
	// was written explicitly and is left for Validate to reject.

	if c.Display.Driver == "" {
		c.Display.Driver = def.Display.Driver
	}
	if c.Button.Driver == "" {
		c.Button.Driver = def.Button.Driver
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}
