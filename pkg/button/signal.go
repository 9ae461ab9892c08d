package button

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Signals turns SIGINT/SIGTERM into middle button presses, so a headless
// run can be stopped the same way as with the joystick.
type Signals struct {
	sig    chan os.Signal
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// NewSignals starts listening for the given signals, SIGINT and SIGTERM by default.
func NewSignals(signals ...os.Signal) *Signals {
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}

	s := &Signals{
		sig:    make(chan os.Signal, 1),
		events: make(chan Event, 1),
		done:   make(chan struct{}),
	}
	signal.Notify(s.sig, signals...)
	go s.run()
	return s
}

func (s *Signals) run() {
	defer close(s.events)
	for {
		select {
		case <-s.done:
			return
		case <-s.sig:
			ev := Event{Timestamp: time.Now(), Direction: Middle, Action: Pressed}
			select {
			case s.events <- ev:
			default:
			}
		}
	}
}

// Events returns the event channel.
func (s *Signals) Events() <-chan Event {
	return s.events
}

// Close stops listening and restores default signal handling.
func (s *Signals) Close() error {
	s.once.Do(func() {
		signal.Stop(s.sig)
		close(s.done)
	})
	return nil
}
