// Package input provides the button level sources used by the player.
package input

import (
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	appinput "github.com/osa030/buttonbox/internal/app/input"
)

// Source types.
const (
	TypeKeyboard = "keyboard"
	TypeScript   = "script"
)

// DefaultHold is how long a key press keeps its button low.
const DefaultHold = 250 * time.Millisecond

// Source is a level source that can ask the player to quit.
type Source interface {
	appinput.Source
	// Done is closed when the source requests shutdown.
	Done() <-chan struct{}
	// Close releases the source.
	Close() error
}

// Options configures New.
type Options struct {
	Hold      time.Duration
	Steps     []Step
	ExitAfter time.Duration
}

// New creates a source of the given type.
func New(kind string, opts Options) (Source, error) {
	switch kind {
	case TypeKeyboard, "":
		hold := opts.Hold
		if hold <= 0 {
			hold = DefaultHold
		}
		return NewKeyboard(hold)
	case TypeScript:
		zlog.Debug().Msgf("input: script source: steps=%d exit_after=%s", len(opts.Steps), opts.ExitAfter)
		return NewScript(opts.Steps, opts.ExitAfter), nil
	default:
		return nil, errors.Newf("unknown input type: %s", kind)
	}
}
