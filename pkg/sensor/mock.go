package sensor

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/itohio/heatgrid/pkg/config"
)

// Mock simulates a room temperature sensor for development without hardware.
type Mock struct {
	cfg config.MockConfig

	mu        sync.Mutex
	startTime time.Time
	closed    bool
	now       func() time.Time
}

// NewMock creates a new simulated sensor.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			Base:       21.5,
			Drift:      0.01,
			NoiseLevel: 0.2,
		}
	}

	return &Mock{
		cfg:       *cfg,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// ReadTemperature returns base + drift·t + noise.
func (m *Mock) ReadTemperature() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, fmt.Errorf("%w: mock sensor closed", ErrRead)
	}

	elapsed := m.now().Sub(m.startTime).Seconds()

	// Deterministic pseudo-noise, two incommensurate frequencies
	noise := (math.Sin(elapsed*1.7) + math.Cos(elapsed*0.31)) * m.cfg.NoiseLevel * 0.5

	return m.cfg.Base + m.cfg.Drift*elapsed + noise, nil
}

// Close stops the mock; later reads fail.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Sequence replays scripted readings. Once exhausted it keeps returning the
// last value. Failures can be injected ahead of the next reads.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
	fail   int
	reads  int
	closed bool
}

// NewSequence creates a scripted sensor.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// FailNext makes the next n reads fail with ErrRead.
func (s *Sequence) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = n
}

// Reads returns the number of ReadTemperature calls, failed ones included.
func (s *Sequence) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// ReadTemperature returns the next scripted value.
func (s *Sequence) ReadTemperature() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++

	if s.closed {
		return 0, fmt.Errorf("%w: sequence closed", ErrRead)
	}
	if s.fail > 0 {
		s.fail--
		return 0, fmt.Errorf("%w: injected failure", ErrRead)
	}
	if len(s.values) == 0 {
		return 0, fmt.Errorf("%w: empty sequence", ErrRead)
	}

	v := s.values[s.next]
	if s.next < len(s.values)-1 {
		s.next++
	}
	return v, nil
}

// Close marks the sequence closed.
func (s *Sequence) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
