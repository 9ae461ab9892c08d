package display

import (
	"fmt"
	"sync"
)

// Memory records written grids. Used for dry runs and tests.
type Memory struct {
	mu     sync.Mutex
	grids  []Grid
	failOn int // fail the n-th write (1-based), 0 = never
	closed bool
}

// NewMemory creates an empty recorder.
func NewMemory() *Memory {
	return &Memory{}
}

// FailOnWrite makes the n-th write (1-based, counting from now on) fail.
func (m *Memory) FailOnWrite(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn = len(m.grids) + n
}

// WriteGrid stores a copy of g.
func (m *Memory) WriteGrid(g Grid) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("%w: memory display closed", ErrWrite)
	}
	if m.failOn > 0 && len(m.grids)+1 == m.failOn {
		m.failOn = 0
		return fmt.Errorf("%w: injected failure", ErrWrite)
	}
	m.grids = append(m.grids, g)
	return nil
}

// Grids returns all grids written so far.
func (m *Memory) Grids() []Grid {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]Grid, len(m.grids))
	copy(result, m.grids)
	return result
}

// Last returns the most recent grid and whether there was one.
func (m *Memory) Last() (Grid, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.grids) == 0 {
		return Grid{}, false
	}
	return m.grids[len(m.grids)-1], true
}

// Close marks the recorder closed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
