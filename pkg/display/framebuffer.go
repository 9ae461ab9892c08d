package display

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SenseHATFramebufferName is the fbdev name registered by the Sense HAT driver.
const SenseHATFramebufferName = "RPi-Sense FB"

// Framebuffer writes grids to the Sense HAT LED matrix through its Linux
// framebuffer device (8×8, RGB565 little-endian).
type Framebuffer struct {
	mu  sync.Mutex
	dev interface {
		io.WriterAt
		io.Closer
	}
	buf [Width * Height * 2]byte
}

// OpenFramebuffer opens the framebuffer at path, or finds the Sense HAT
// framebuffer when path is empty.
func OpenFramebuffer(path string) (*Framebuffer, error) {
	if path == "" {
		found, err := FindFramebuffer("/sys/class/graphics", SenseHATFramebufferName)
		if err != nil {
			return nil, err
		}
		path = found
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open framebuffer %s: %w", path, err)
	}
	return NewFramebuffer(f), nil
}

// NewFramebuffer wraps an opened framebuffer device.
func NewFramebuffer(dev interface {
	io.WriterAt
	io.Closer
}) *Framebuffer {
	return &Framebuffer{dev: dev}
}

// FindFramebuffer scans sysfs for a framebuffer whose name matches and
// returns its /dev path.
func FindFramebuffer(sysfs, name string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(sysfs, "fb*"))
	if err != nil {
		return "", err
	}
	for _, dir := range matches {
		data, err := os.ReadFile(filepath.Join(dir, "name"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(data)) == name {
			return filepath.Join("/dev", filepath.Base(dir)), nil
		}
	}
	return "", fmt.Errorf("framebuffer %q not found under %s", name, sysfs)
}

// RGB565 packs c into the 16-bit format used by the LED matrix.
func RGB565(c Color) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

// WriteGrid writes the whole matrix in one call.
func (f *Framebuffer) WriteGrid(g Grid) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.dev == nil {
		return fmt.Errorf("%w: framebuffer closed", ErrWrite)
	}

	for i, c := range g {
		binary.LittleEndian.PutUint16(f.buf[i*2:], RGB565(c))
	}
	if _, err := f.dev.WriteAt(f.buf[:], 0); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Clear turns all LEDs off.
func (f *Framebuffer) Clear() error {
	return f.WriteGrid(Grid{})
}

// Close releases the device.
func (f *Framebuffer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.dev == nil {
		return nil
	}
	err := f.dev.Close()
	f.dev = nil
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}
