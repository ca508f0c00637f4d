// Package input defines the pointer event model shared by every host
// (evdev, HTTP, websocket) and maps events into element-local coordinates.
package input

import "fmt"

type Type int

const (
	Down Type = iota + 1
	Move
	Up
)

func (t Type) String() string {
	switch t {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

type Source int

const (
	Mouse Source = iota
	Touch
)

func (s Source) String() string {
	if s == Touch {
		return "touch"
	}
	return "mouse"
}

type Point struct {
	X, Y float64
}

// Event is a mouse or touch event. Mouse events carry Page; touch events
// carry ChangedTouches. Either may be missing on a malformed event.
type Event struct {
	Type           Type
	Source         Source
	Page           *Point
	ChangedTouches []Point
	Cancelable     bool
}

// PagePoint returns the page coordinates the event refers to: the first
// changed touch for touch events, the event's own coordinates otherwise.
func (ev Event) PagePoint() (Point, bool) {
	if ev.Source == Touch {
		if len(ev.ChangedTouches) == 0 {
			return Point{}, false
		}
		return ev.ChangedTouches[0], true
	}
	if ev.Page == nil {
		return Point{}, false
	}
	return *ev.Page, true
}

// ParseDOMType maps a DOM event name to its Type and Source.
func ParseDOMType(name string) (Type, Source, error) {
	switch name {
	case "mousedown":
		return Down, Mouse, nil
	case "mousemove":
		return Move, Mouse, nil
	case "mouseup":
		return Up, Mouse, nil
	case "touchstart":
		return Down, Touch, nil
	case "touchmove":
		return Move, Touch, nil
	case "touchend":
		return Up, Touch, nil
	}
	return 0, 0, fmt.Errorf("unknown event type %q", name)
}

// MouseEvent and TouchEvent are shorthands used by hosts and tests.
func MouseEvent(t Type, x, y float64) Event {
	return Event{Type: t, Source: Mouse, Page: &Point{X: x, Y: y}, Cancelable: true}
}

func TouchEvent(t Type, x, y float64) Event {
	return Event{Type: t, Source: Touch, ChangedTouches: []Point{{X: x, Y: y}}, Cancelable: true}
}
