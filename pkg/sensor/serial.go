package sensor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate of the probe firmware.
	DefaultBaudRate = 115200
	// DefaultStaleAfter is how long a probe reading stays valid.
	DefaultStaleAfter = 2 * time.Second
)

// Reading is one line received from the serial probe.
type Reading struct {
	Timestamp time.Time // probe clock
	Celsius   float64
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads temperature lines streamed by an external probe MCU.
// The probe pushes readings on its own schedule; ReadTemperature serves the
// latest one as long as it is fresh.
type Serial struct {
	port       string
	baudRate   int
	staleAfter time.Duration
	log        logrus.FieldLogger

	conn      io.ReadCloser
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	latest     Reading
	receivedAt time.Time
	now        func() time.Time
}

// NewSerial creates a new probe instance with the specified port and baud rate.
func NewSerial(port string, baudRate int, staleAfter time.Duration, log logrus.FieldLogger) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if staleAfter == 0 {
		staleAfter = DefaultStaleAfter
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:       port,
		baudRate:   baudRate,
		staleAfter: staleAfter,
		log:        log.WithField("component", "serial-probe"),
		ctx:        ctx,
		cancel:     cancel,
		now:        time.Now,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading probe lines.
func (s *Serial) Connect() error {
	port, err := serial.Open(s.port, &serial.Mode{
		BaudRate: s.baudRate,
	})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}

	return s.attach(port)
}

// attach starts reading from an already opened stream.
func (s *Serial) attach(conn io.ReadCloser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		conn.Close()
		return fmt.Errorf("already connected")
	}

	s.conn = conn
	s.connected = true

	go s.readLines(conn)

	return nil
}

// Close closes the connection and stops reading.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}

	s.cancel()

	var err error
	if s.conn != nil {
		err = s.conn.Close()
		s.conn = nil
	}
	s.connected = false

	return err
}

// ReadTemperature returns the most recent probe reading.
func (s *Serial) ReadTemperature() (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.connected {
		return 0, fmt.Errorf("%w: serial probe not connected", ErrRead)
	}
	if s.receivedAt.IsZero() {
		return 0, fmt.Errorf("%w: no reading received from %s yet", ErrRead, s.port)
	}
	if age := s.now().Sub(s.receivedAt); age > s.staleAfter {
		return 0, fmt.Errorf("%w: last reading from %s is %s old", ErrRead, s.port, age.Round(time.Millisecond))
	}

	return s.latest.Celsius, nil
}

// readLines reads lines from the port and stores the latest parsed reading.
func (s *Serial) readLines(conn io.Reader) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("Panic in readLines: %v", r)
		}
	}()

	scanner := bufio.NewScanner(conn)
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && s.ctx.Err() == nil {
					s.log.WithError(err).Warn("Error reading from serial port")
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			reading, err := parseLine(line)
			if err != nil {
				s.log.WithError(err).Debugf("Failed to parse line '%s'", line)
				continue
			}

			s.mu.Lock()
			s.latest = reading
			s.receivedAt = s.now()
			s.mu.Unlock()
		}
	}
}

// parseLine parses a line from the probe into a Reading.
// Format: unix_micros,millicelsius
// Example: 1234567890123,21375
func parseLine(line string) (Reading, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return Reading{}, fmt.Errorf("invalid line format: expected 2 comma-separated values, got %d", len(parts))
	}

	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Reading{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	milli, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return Reading{}, fmt.Errorf("invalid temperature: %w", err)
	}
	// TMP36 range with margin.
	if milli < -60000 || milli > 150000 {
		return Reading{}, fmt.Errorf("temperature out of range: %d m°C", milli)
	}

	return Reading{
		Timestamp: time.Unix(0, timestampMicros*1000),
		Celsius:   float64(milli) / 1000,
	}, nil
}
