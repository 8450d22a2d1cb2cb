package input

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Button identifies one of the three physical buttons.
type Button int

const (
	ButtonPrev Button = iota
	ButtonPlay
	ButtonNext
	buttonCount
)

// Buttons lists the buttons in the order they are evaluated each tick.
var Buttons = [buttonCount]Button{ButtonPrev, ButtonPlay, ButtonNext}

// String returns the string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonPrev:
		return "prev"
	case ButtonPlay:
		return "play"
	case ButtonNext:
		return "next"
	default:
		return "unknown"
	}
}

// ParseButton returns the button with the given name.
func ParseButton(name string) (Button, error) {
	for _, b := range Buttons {
		if strings.EqualFold(name, b.String()) {
			return b, nil
		}
	}
	return 0, errors.Newf("unknown button %q", name)
}

// Levels holds one raw sample per button.
type Levels [buttonCount]Level

// Released returns levels with every button idle.
func Released() Levels {
	return Levels{High, High, High}
}

// Source provides raw button levels.
type Source interface {
	// Levels samples all three inputs at now.
	Levels(now time.Time) Levels
}

// Panel debounces the three buttons independently.
type Panel struct {
	channels [buttonCount]*Debouncer
}

// NewPanel creates a panel whose channels share the same window.
func NewPanel(window time.Duration) *Panel {
	p := &Panel{}
	for _, b := range Buttons {
		p.channels[b] = NewDebouncer(window)
	}
	return p
}

// Update runs every channel once and returns the pressed buttons in
// evaluation order. At most one press per button is reported.
func (p *Panel) Update(levels Levels, now time.Time) []Button {
	var pressed []Button
	for _, b := range Buttons {
		if edge, ok := p.channels[b].Update(levels[b], now); ok && edge == FallingEdge {
			pressed = append(pressed, b)
		}
	}
	return pressed
}
