package sample

import "sync"

// Buffer is the ordered, shared collection of samples between the
// acquisition and aggregation loops. Every method holds the buffer lock for
// its whole duration, so an aggregation pass never interleaves with an append.
type Buffer struct {
	mu       sync.Mutex
	samples  []Sample
	capacity int
	appended int
	dropped  int
}

// NewBuffer creates a buffer. A positive capacity bounds the number of
// stored samples; 0 means unbounded.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	initial := capacity
	if initial == 0 || initial > 1024 {
		initial = 1024
	}
	return &Buffer{
		samples:  make([]Sample, 0, initial),
		capacity: capacity,
	}
}

// Append adds a sample at the end. When the buffer is full the oldest entry
// is dropped; it returns true in that case. Dropping a pending sample is
// recorded in Dropped.
func (b *Buffer) Append(s Sample) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.appended++

	overflow := b.capacity > 0 && len(b.samples) >= b.capacity
	if overflow {
		if !b.samples[0].Consumed {
			b.dropped++
		}
		copy(b.samples, b.samples[1:])
		b.samples[len(b.samples)-1] = s
		return true
	}

	b.samples = append(b.samples, s)
	return false
}

// Aggregate performs one aggregation pass: samples consumed by a previous
// pass are evicted, pending samples are averaged and marked consumed.
// The pass rebuilds the slice instead of removing while iterating.
func (b *Buffer) Aggregate() Aggregate {
	b.mu.Lock()
	defer b.mu.Unlock()

	var acc accumulator
	retained := b.samples[:0]
	evicted := 0

	for _, s := range b.samples {
		if s.Consumed {
			evicted++
			continue
		}
		acc.add(s)
		s.Consumed = true
		retained = append(retained, s)
	}

	// Clear the tail so evicted samples don't linger in the backing array.
	clear(b.samples[len(retained):])
	b.samples = retained

	return Aggregate{
		Timestamp: acc.first,
		Count:     acc.count,
		Average:   acc.average(),
		Evicted:   evicted,
	}
}

// Len returns the number of stored samples, consumed ones included.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// Pending returns the number of samples not yet folded into an average.
func (b *Buffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, s := range b.samples {
		if !s.Consumed {
			n++
		}
	}
	return n
}

// Appended returns the total number of samples ever appended.
func (b *Buffer) Appended() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.appended
}

// Dropped returns the number of pending samples lost to overflow.
func (b *Buffer) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Snapshot returns a copy of the stored samples, oldest first.
func (b *Buffer) Snapshot() []Sample {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]Sample, len(b.samples))
	copy(result, b.samples)
	return result
}
