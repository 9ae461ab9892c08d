package button

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// RunState is the process-wide run/stop status. It only moves forward:
// running -> stopping -> terminal.
type RunState int32

const (
	Running RunState = iota
	Stopping
	Terminal
)

func (s RunState) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Coordinator owns the RunState. The first middle press requests a stop;
// loops observe it cooperatively at their iteration boundaries.
type Coordinator struct {
	state atomic.Int32
	done  chan struct{}
	once  sync.Once
	log   logrus.FieldLogger

	wg sync.WaitGroup
}

// NewCoordinator creates a coordinator in the running state.
func NewCoordinator(log logrus.FieldLogger) *Coordinator {
	return &Coordinator{
		done: make(chan struct{}),
		log:  log.WithField("component", "stop"),
	}
}

// State returns the current RunState.
func (c *Coordinator) State() RunState {
	return RunState(c.state.Load())
}

// Stopping reports whether a stop was requested (or the run is over).
func (c *Coordinator) Stopping() bool {
	return c.State() != Running
}

// Done is closed when a stop is requested.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Handle processes one event and reports whether it triggered the stop.
// Only the middle control's "pressed" action is acted on.
func (c *Coordinator) Handle(ev Event) bool {
	if ev.Direction != Middle || ev.Action != Pressed {
		return false
	}
	return c.Stop()
}

// Stop moves running -> stopping. It returns true only for the call that
// made the transition.
func (c *Coordinator) Stop() bool {
	if !c.state.CompareAndSwap(int32(Running), int32(Stopping)) {
		return false
	}
	c.once.Do(func() { close(c.done) })
	c.log.Info("Button pressed")
	return true
}

// Finish marks the run terminal once both loops have exited.
func (c *Coordinator) Finish() {
	c.state.Store(int32(Terminal))
	c.once.Do(func() { close(c.done) })
}

// Watch consumes src in its own goroutine until the source closes or ctx
// ends, so presses are seen independently of loop timing.
func (c *Coordinator) Watch(ctx context.Context, src Source) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-src.Events():
				if !ok {
					return
				}
				c.log.WithFields(logrus.Fields{
					"direction": ev.Direction,
					"action":    ev.Action,
				}).Debug("Button event")
				c.Handle(ev)
			}
		}
	}()
}

// Wait blocks until every Watch goroutine has returned.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
