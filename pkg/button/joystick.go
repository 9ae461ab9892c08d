package button

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SenseHATJoystickName is the evdev name of the Sense HAT joystick.
const SenseHATJoystickName = "Raspberry Pi Sense HAT Joystick"

// Linux input event constants (linux/input-event-codes.h).
const (
	evKey = 0x01

	keyEnter = 28
	keyUp    = 103
	keyLeft  = 105
	keyRight = 106
	keyDown  = 108
)

// timevalSize is the size of struct timeval on this platform.
var timevalSize = 2 * strconv.IntSize / 8

// eventSize is the size of struct input_event on this platform.
var eventSize = timevalSize + 8

// Joystick reads the Sense HAT joystick through the Linux evdev interface.
type Joystick struct {
	r      io.ReadCloser
	events chan Event
	log    logrus.FieldLogger

	closeOnce sync.Once
	closeErr  error
}

// OpenJoystick opens the evdev device at path, or finds the Sense HAT
// joystick when path is empty.
func OpenJoystick(path string, log logrus.FieldLogger) (*Joystick, error) {
	if path == "" {
		found, err := FindInputDevice("/sys/class/input", SenseHATJoystickName)
		if err != nil {
			return nil, err
		}
		path = found
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open joystick %s: %w", path, err)
	}
	return NewJoystick(f, log), nil
}

// NewJoystick starts decoding input events from r.
func NewJoystick(r io.ReadCloser, log logrus.FieldLogger) *Joystick {
	j := &Joystick{
		r:      r,
		events: make(chan Event, 16),
		log:    log.WithField("component", "joystick"),
	}
	go j.readEvents()
	return j
}

// FindInputDevice scans sysfs for an event device with the given name and
// returns its /dev/input path.
func FindInputDevice(sysfs, name string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(sysfs, "event*"))
	if err != nil {
		return "", err
	}
	for _, dir := range matches {
		data, err := os.ReadFile(filepath.Join(dir, "device", "name"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(data)) == name {
			return filepath.Join("/dev/input", filepath.Base(dir)), nil
		}
	}
	return "", fmt.Errorf("input device %q not found under %s", name, sysfs)
}

// Events returns the event channel.
func (j *Joystick) Events() <-chan Event {
	return j.events
}

// Close stops reading; the event channel is closed once the reader exits.
func (j *Joystick) Close() error {
	j.closeOnce.Do(func() {
		j.closeErr = j.r.Close()
	})
	return j.closeErr
}

func (j *Joystick) readEvents() {
	defer close(j.events)

	buf := make([]byte, eventSize)
	for {
		if _, err := io.ReadFull(j.r, buf); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
				j.log.WithError(err).Warn("Joystick read failed")
			}
			return
		}

		ev, ok := decodeEvent(buf)
		if !ok {
			continue
		}

		select {
		case j.events <- ev:
		default:
			j.log.Warn("Joystick events channel full, dropping event")
		}
	}
}

// decodeEvent converts a raw input_event. Only joystick key events are kept.
func decodeEvent(buf []byte) (Event, bool) {
	var sec, usec int64
	if timevalSize == 16 {
		sec = int64(binary.LittleEndian.Uint64(buf[0:]))
		usec = int64(binary.LittleEndian.Uint64(buf[8:]))
	} else {
		sec = int64(int32(binary.LittleEndian.Uint32(buf[0:])))
		usec = int64(int32(binary.LittleEndian.Uint32(buf[4:])))
	}

	typ := binary.LittleEndian.Uint16(buf[timevalSize:])
	code := binary.LittleEndian.Uint16(buf[timevalSize+2:])
	value := int32(binary.LittleEndian.Uint32(buf[timevalSize+4:]))

	if typ != evKey {
		return Event{}, false
	}

	var dir Direction
	switch code {
	case keyEnter:
		dir = Middle
	case keyUp:
		dir = Up
	case keyDown:
		dir = Down
	case keyLeft:
		dir = Left
	case keyRight:
		dir = Right
	default:
		return Event{}, false
	}

	var action Action
	switch value {
	case 0:
		action = Released
	case 1:
		action = Pressed
	case 2:
		action = Held
	default:
		return Event{}, false
	}

	return Event{
		Timestamp: time.Unix(sec, usec*int64(time.Microsecond)),
		Direction: dir,
		Action:    action,
	}, true
}
