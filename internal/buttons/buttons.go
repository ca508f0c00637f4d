package buttons

import (
	"context"
	"sync"

	"github.com/rook-computer/scratchcard/internal/input"
)

type Event string

const (
	Reset Event = "reset"
	Exit  Event = "exit"
)

type Buttons interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan Event
}

type NoopButtons struct{ ch chan Event }

func NewNoopButtons() *NoopButtons { return &NoopButtons{ch: make(chan Event)} }

func (n *NoopButtons) Start(ctx context.Context) error { return nil }
func (n *NoopButtons) Stop() error                     { close(n.ch); return nil }
func (n *NoopButtons) Events() <-chan Event            { return n.ch }

// DefaultKeymap binds KEY_R to reset and F4 to exit.
var DefaultKeymap = map[uint16]Event{
	input.KeyR:  Reset,
	input.KeyF4: Exit,
}

// KeyButtons turns evdev key presses into button events. Press is meant to
// be used as an input.Reader OnKey callback.
type KeyButtons struct {
	Keymap map[uint16]Event

	ch       chan Event
	stopOnce sync.Once
	done     chan struct{}
}

func NewKeyButtons() *KeyButtons {
	return &KeyButtons{Keymap: DefaultKeymap, ch: make(chan Event, 8), done: make(chan struct{})}
}

func (k *KeyButtons) Start(ctx context.Context) error { return nil }

func (k *KeyButtons) Stop() error {
	k.stopOnce.Do(func() { close(k.done) })
	return nil
}

func (k *KeyButtons) Events() <-chan Event { return k.ch }

// Press reports whether code is bound. Presses are dropped while the event
// buffer is full or after Stop.
func (k *KeyButtons) Press(code uint16) bool {
	ev, ok := k.Keymap[code]
	if !ok {
		return false
	}
	select {
	case <-k.done:
		return false
	default:
	}
	select {
	case k.ch <- ev:
	default:
	}
	return true
}
