package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, SensorHTS221, cfg.Sensor.Driver)
	assert.Equal(t, uint16(0x5F), cfg.Sensor.I2CAddr)
	assert.Equal(t, 5, cfg.Calibration.Cycles)
	assert.Equal(t, time.Second, cfg.Calibration.Interval)
	assert.Equal(t, 1.0, cfg.Calibration.Tolerance)
	assert.Equal(t, 500*time.Millisecond, cfg.Acquisition.Interval)
	assert.Equal(t, 500, cfg.Acquisition.Budget)
	assert.Equal(t, 5*time.Second, cfg.Aggregation.Interval)
	assert.Equal(t, 50, cfg.Aggregation.Budget)
	assert.Equal(t, DisplayFramebuffer, cfg.Display.Driver)
	assert.Equal(t, ButtonJoystick, cfg.Button.Driver)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "SenseHat-Temp", cfg.Calibration.Name)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
sensor:
  driver: serial
  retries: 3
  retry_delay: 10ms
  serial:
    port: "/dev/ttyUSB0"
    baud_rate: 57600

calibration:
  cycles: 10
  interval: 200ms
  tolerance: 0.5

acquisition:
  interval: 250ms
  budget: 1000

aggregation:
  interval: 2s
  budget: 20

buffer:
  capacity: 64

display:
  driver: console

button:
  driver: signal

log:
  level: debug
  format: json
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, SensorSerial, cfg.Sensor.Driver)
	assert.Equal(t, 3, cfg.Sensor.Retries)
	assert.Equal(t, 10*time.Millisecond, cfg.Sensor.RetryDelay)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Sensor.Serial.Port)
	assert.Equal(t, 57600, cfg.Sensor.Serial.BaudRate)
	assert.Equal(t, 10, cfg.Calibration.Cycles)
	assert.Equal(t, 200*time.Millisecond, cfg.Calibration.Interval)
	assert.Equal(t, 0.5, cfg.Calibration.Tolerance)
	assert.Equal(t, 250*time.Millisecond, cfg.Acquisition.Interval)
	assert.Equal(t, 1000, cfg.Acquisition.Budget)
	assert.Equal(t, 2*time.Second, cfg.Aggregation.Interval)
	assert.Equal(t, 20, cfg.Aggregation.Budget)
	assert.Equal(t, 64, cfg.Buffer.Capacity)
	assert.Equal(t, DisplayConsole, cfg.Display.Driver)
	assert.Equal(t, ButtonSignal, cfg.Button.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
sensor:
  driver: mock
calibration:
  cycles: 0
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, SensorMock, cfg.Sensor.Driver)
	assert.Equal(t, 5, cfg.Calibration.Cycles)                      // default
	assert.Equal(t, 500*time.Millisecond, cfg.Acquisition.Interval) // default
	assert.Equal(t, 50, cfg.Aggregation.Budget)                     // default
}

func TestLoad_InvalidValuesFailValidate(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
sensor:
  driver: thermocouple
calibration:
  tolerance: -1
acquisition:
  budget: -5
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	// Overrides may still fix the file, so only Validate reports it
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sensor driver")
	assert.Contains(t, err.Error(), "calibration.tolerance")
	assert.Contains(t, err.Error(), "acquisition.budget")
}

func TestLoad_OverrideRescuesBadDriver(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("sensor:\n  driver: thermocouple\ndisplay:\n  driver: hdmi\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	require.Error(t, cfg.Validate())

	cfg.Sensor.Driver = SensorMock
	cfg.Display.Driver = DisplayNone
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitZeroInterval(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
acquisition:
  interval: 0s
aggregation:
  budget: 10
`
	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	// Explicit zero is kept, missing fields keep their defaults
	assert.Equal(t, time.Duration(0), cfg.Acquisition.Interval)
	assert.Equal(t, 500, cfg.Acquisition.Budget)
	assert.Equal(t, 5*time.Second, cfg.Aggregation.Interval)
	assert.Equal(t, 10, cfg.Aggregation.Budget)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquisition.interval")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero calibration cycles",
			mutate:  func(c *Config) { c.Calibration.Cycles = 0 },
			wantErr: "calibration.cycles",
		},
		{
			name:    "zero aggregation budget",
			mutate:  func(c *Config) { c.Aggregation.Budget = 0 },
			wantErr: "aggregation.budget",
		},
		{
			name:    "negative acquisition interval",
			mutate:  func(c *Config) { c.Acquisition.Interval = -time.Second },
			wantErr: "acquisition.interval",
		},
		{
			name:    "zero aggregation interval",
			mutate:  func(c *Config) { c.Aggregation.Interval = 0 },
			wantErr: "aggregation.interval",
		},
		{
			name:   "window display",
			mutate: func(c *Config) { c.Display.Driver = DisplayWindow },
		},
		{
			name:    "negative buffer capacity",
			mutate:  func(c *Config) { c.Buffer.Capacity = -1 },
			wantErr: "buffer.capacity",
		},
		{
			name:    "unknown display",
			mutate:  func(c *Config) { c.Display.Driver = "hdmi" },
			wantErr: "unknown display driver",
		},
		{
			name:    "unknown button",
			mutate:  func(c *Config) { c.Button.Driver = "gpio" },
			wantErr: "unknown button driver",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.Sensor.Retries = -1 },
			wantErr: "sensor.retries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Sensor.Driver = SensorMock
	cfg.Acquisition.Budget = 42

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, SensorMock, loaded.Sensor.Driver)
	assert.Equal(t, 42, loaded.Acquisition.Budget)
	assert.Equal(t, cfg.Aggregation.Interval, loaded.Aggregation.Interval)
}
