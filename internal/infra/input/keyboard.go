package input

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/term"

	appinput "github.com/osa030/buttonbox/internal/app/input"
)

const ctrlC = 0x03

// keymap maps keys to buttons.
var keymap = map[byte]appinput.Button{
	'p': appinput.ButtonPrev,
	'a': appinput.ButtonPrev,
	' ': appinput.ButtonPlay,
	'n': appinput.ButtonNext,
	'd': appinput.ButtonNext,
}

// Keyboard emulates the buttons with single key presses on stdin.
// A key holds its button low for the hold duration.
type Keyboard struct {
	hold time.Duration
	now  func() time.Time

	fd       int
	oldState *term.State

	mu        sync.Mutex
	pressedAt [len(appinput.Buttons)]time.Time

	done     chan struct{}
	doneOnce sync.Once
}

// NewKeyboard puts the terminal into raw mode and starts reading stdin.
func NewKeyboard(hold time.Duration) (*Keyboard, error) {
	fd := int(os.Stdin.Fd())
	var oldState *term.State
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, errors.Wrap(err, "failed to enter raw mode")
		}
		oldState = state
	} else {
		zlog.Warn().Msg("input: stdin is not a terminal, reading keys without raw mode")
	}

	k := newKeyboard(os.Stdin, hold, time.Now)
	k.fd = fd
	k.oldState = oldState
	return k, nil
}

func newKeyboard(r io.Reader, hold time.Duration, now func() time.Time) *Keyboard {
	k := &Keyboard{
		hold: hold,
		now:  now,
		fd:   -1,
		done: make(chan struct{}),
	}
	go k.readLoop(r)
	return k
}

func (k *Keyboard) readLoop(r io.Reader) {
	buf := make([]byte, 1)
	for {
		if _, err := r.Read(buf); err != nil {
			if !errors.Is(err, io.EOF) {
				zlog.Error().Err(err).Msg("input: failed to read key")
			}
			return
		}
		k.handleKey(buf[0])
	}
}

func (k *Keyboard) handleKey(key byte) {
	switch key {
	case 'q', ctrlC:
		zlog.Info().Msg("input: quit requested")
		k.quit()
		return
	}

	b, ok := keymap[key]
	if !ok {
		return
	}
	k.mu.Lock()
	k.pressedAt[b] = k.now()
	k.mu.Unlock()
	zlog.Debug().Msgf("input: key pressed: key=%q button=%s", key, b)
}

func (k *Keyboard) quit() {
	k.doneOnce.Do(func() { close(k.done) })
}

// Levels implements appinput.Source.
func (k *Keyboard) Levels(now time.Time) appinput.Levels {
	levels := appinput.Released()

	k.mu.Lock()
	defer k.mu.Unlock()
	for _, b := range appinput.Buttons {
		at := k.pressedAt[b]
		if at.IsZero() {
			continue
		}
		if now.Sub(at) < k.hold {
			levels[b] = appinput.Low
		} else {
			k.pressedAt[b] = time.Time{}
		}
	}
	return levels
}

// Done is closed after q or Ctrl-C.
func (k *Keyboard) Done() <-chan struct{} {
	return k.done
}

// Close restores the terminal state.
func (k *Keyboard) Close() error {
	if k.oldState == nil {
		return nil
	}
	state := k.oldState
	k.oldState = nil
	if err := term.Restore(k.fd, state); err != nil {
		return errors.Wrap(err, "failed to restore terminal")
	}
	return nil
}
