package sample

import "time"

// Aggregate is the result of one aggregation pass over the buffer.
type Aggregate struct {
	Timestamp time.Time // capture time of the first sample folded in, zero if none
	Count     int       // samples folded into this average
	Average   float64   // 0 when Count == 0
	Evicted   int       // consumed samples removed by this pass
}

// accumulator folds sample values into a running sum.
type accumulator struct {
	first time.Time
	count int
	sum   float64
}

func (a *accumulator) add(s Sample) {
	if a.count == 0 {
		a.first = s.Timestamp
	}
	a.count++
	a.sum += s.Value
}

// average returns sum/count, or 0 for an empty accumulator. A quiet period
// reports 0 rather than "no data".
func (a *accumulator) average() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}
