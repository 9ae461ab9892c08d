package sensor

import (
	"fmt"
	"io"
	"sync"

	"github.com/chewxy/math32"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	// DefaultHTS221Addr is the I2C address of the HTS221 on the Sense HAT.
	DefaultHTS221Addr = 0x5F

	hts221WhoAmIValue = 0xBC

	hts221RegWhoAmI   = 0x0F
	hts221RegCtrl1    = 0x20
	hts221RegTempOutL = 0x2A
	hts221RegCalib    = 0x30 // 0x30..0x3F

	// Register address MSB enables auto-increment for multi-byte reads.
	hts221AutoIncrement = 0x80

	// PD=1 (active), BDU=1 (block data update), ODR=12.5 Hz.
	hts221Ctrl1Active = 0x80 | 0x04 | 0x03

	// Operating range -40..+120 °C, as center and half width.
	hts221RangeCenter = 40
	hts221RangeHalf   = 80
)

// HTS221 reads temperature from an ST HTS221 humidity/temperature sensor.
type HTS221 struct {
	dev    i2c.Dev
	closer io.Closer

	mu sync.Mutex

	// Factory calibration: two reference points (°C, raw output).
	t0, t1       float32
	t0Out, t1Out int16
}

// OpenHTS221 initializes the periph host, opens the named I2C bus (empty
// for the first available) and configures the sensor at addr.
func OpenHTS221(busName string, addr uint16) (*HTS221, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("I2C bus open %q: %w", busName, err)
	}

	h, err := NewHTS221(bus, addr)
	if err != nil {
		bus.Close()
		return nil, err
	}
	h.closer = bus
	return h, nil
}

// NewHTS221 configures an HTS221 on an already opened bus.
func NewHTS221(bus i2c.Bus, addr uint16) (*HTS221, error) {
	if addr == 0 {
		addr = DefaultHTS221Addr
	}
	h := &HTS221{dev: i2c.Dev{Bus: bus, Addr: addr}}

	var who [1]byte
	if err := h.dev.Tx([]byte{hts221RegWhoAmI}, who[:]); err != nil {
		return nil, fmt.Errorf("HTS221 WHO_AM_I: %w", err)
	}
	if who[0] != hts221WhoAmIValue {
		return nil, fmt.Errorf("HTS221 WHO_AM_I: unexpected id 0x%02X (want 0x%02X)", who[0], hts221WhoAmIValue)
	}

	if err := h.dev.Tx([]byte{hts221RegCtrl1, hts221Ctrl1Active}, nil); err != nil {
		return nil, fmt.Errorf("HTS221 CTRL_REG1: %w", err)
	}

	var cal [16]byte
	if err := h.dev.Tx([]byte{hts221RegCalib | hts221AutoIncrement}, cal[:]); err != nil {
		return nil, fmt.Errorf("HTS221 calibration read: %w", err)
	}
	h.setCalibration(cal)

	if h.t1Out == h.t0Out {
		return nil, fmt.Errorf("HTS221 calibration: T0_OUT == T1_OUT (%d)", h.t0Out)
	}

	return h, nil
}

// setCalibration decodes the 0x30..0x3F calibration block.
func (h *HTS221) setCalibration(cal [16]byte) {
	msb := cal[0x35-hts221RegCalib]
	t0x8 := uint16(msb&0x03)<<8 | uint16(cal[0x32-hts221RegCalib])
	t1x8 := uint16(msb&0x0C)<<6 | uint16(cal[0x33-hts221RegCalib])

	h.t0 = float32(t0x8) / 8
	h.t1 = float32(t1x8) / 8
	h.t0Out = int16(uint16(cal[0x3C-hts221RegCalib]) | uint16(cal[0x3D-hts221RegCalib])<<8)
	h.t1Out = int16(uint16(cal[0x3E-hts221RegCalib]) | uint16(cal[0x3F-hts221RegCalib])<<8)
}

// ReadTemperature reads TEMP_OUT and converts it using the factory calibration.
func (h *HTS221) ReadTemperature() (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var raw [2]byte
	if err := h.dev.Tx([]byte{hts221RegTempOutL | hts221AutoIncrement}, raw[:]); err != nil {
		return 0, fmt.Errorf("%w: HTS221 TEMP_OUT: %v", ErrRead, err)
	}
	out := int16(uint16(raw[0]) | uint16(raw[1])<<8)

	t := h.convert(out)
	if math32.Abs(t-hts221RangeCenter) > hts221RangeHalf {
		return 0, fmt.Errorf("%w: HTS221 reading %.2f°C (raw %d) outside operating range", ErrRead, t, out)
	}
	return float64(t), nil
}

// convert linearly interpolates between the two calibration points.
func (h *HTS221) convert(out int16) float32 {
	return h.t0 + float32(int32(out)-int32(h.t0Out))*(h.t1-h.t0)/float32(int32(h.t1Out)-int32(h.t0Out))
}

// Close powers the sensor down and releases the bus if it was opened here.
func (h *HTS221) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.dev.Tx([]byte{hts221RegCtrl1, 0x00}, nil)
	if h.closer != nil {
		if cerr := h.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
		h.closer = nil
	}
	return err
}
