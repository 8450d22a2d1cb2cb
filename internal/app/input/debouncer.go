// Package input turns raw button levels into stable press events.
package input

import "time"

// DefaultWindow is how long a raw level must hold before it is trusted.
const DefaultWindow = 200 * time.Millisecond

// Level is the electrical level of an active-low button input.
type Level bool

const (
	Low  Level = false // Pressed
	High Level = true  // Released (pull-up idle)
)

// String returns the string representation of the level.
func (l Level) String() string {
	if l == Low {
		return "low"
	}
	return "high"
}

// Edge is a stabilized transition reported by a Debouncer.
type Edge int

const (
	FallingEdge Edge = iota + 1 // High to Low, i.e. a press
)

// Debouncer filters one raw input into stable edges.
// The zero value is not ready for use; call NewDebouncer.
type Debouncer struct {
	window     time.Duration
	stable     Level
	lastRaw    Level
	lastChange time.Time
}

// NewDebouncer creates a debouncer idling at High.
// A non-positive window means DefaultWindow.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{
		window:  window,
		stable:  High,
		lastRaw: High,
	}
}

// Update feeds one raw sample taken at now.
// It must be called every tick, whether or not the level changed.
// A FallingEdge is returned once per accepted High to Low transition.
func (d *Debouncer) Update(raw Level, now time.Time) (Edge, bool) {
	if raw != d.lastRaw {
		d.lastChange = now
		d.lastRaw = raw
	}

	if now.Sub(d.lastChange) <= d.window || raw == d.stable {
		return 0, false
	}

	d.stable = raw
	if d.stable == Low {
		return FallingEdge, true
	}
	return 0, false
}

// Stable returns the last accepted level.
func (d *Debouncer) Stable() Level {
	return d.stable
}
