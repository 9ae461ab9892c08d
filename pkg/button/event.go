// Package button delivers joystick events and turns the first middle press
// into a cooperative stop request.
package button

import "time"

// Action is what happened to a button.
type Action int

const (
	Released Action = iota
	Pressed
	Held
)

func (a Action) String() string {
	switch a {
	case Pressed:
		return "pressed"
	case Held:
		return "held"
	case Released:
		return "released"
	default:
		return "unknown"
	}
}

// Direction identifies the joystick control.
type Direction int

const (
	Middle Direction = iota
	Up
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Middle:
		return "middle"
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Event is one joystick event.
type Event struct {
	Timestamp time.Time
	Direction Direction
	Action    Action
}

// Source delivers events until closed. The channel is closed when the
// source stops.
type Source interface {
	Events() <-chan Event
	Close() error
}

var (
	_ Source = (*Joystick)(nil)
	_ Source = (*Signals)(nil)
)
