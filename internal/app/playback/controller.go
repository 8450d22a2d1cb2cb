package playback

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/buttonbox/internal/app/input"
	"github.com/osa030/buttonbox/internal/domain/playlist"
	"github.com/osa030/buttonbox/internal/domain/track"
)

// Errors
var (
	ErrNoTrack = errors.New("no track at cursor")
)

// Engine is the decode pipeline driven by the controller.
// At most one session exists at a time.
type Engine interface {
	// Start opens a session for the identifier. On error nothing is retained.
	Start(id string) error
	// Pump performs one bounded decode step. It returns false once the stream
	// is exhausted; the session still has to be stopped.
	Pump() bool
	// Stop releases the session. It is a no-op without one.
	Stop()
	// IsActive reports whether a session exists.
	IsActive() bool
}

// Presenter shows a selection. Return values are never consulted.
type Presenter interface {
	ShowSelection(song, artist string)
}

// Config holds controller configuration.
type Config struct {
	DebounceWindow time.Duration
}

// Controller owns the state machine, the button panel and the decode session.
// All methods are expected to be called from the control loop; the mutex only
// protects readers on other goroutines.
type Controller struct {
	mu sync.Mutex

	machine   *Machine
	panel     *input.Panel
	engine    Engine
	presenter Presenter

	// Session bookkeeping, set only between a successful start and the next stop.
	sessionTrack   string
	sessionStarted time.Time
}

// NewController creates a controller for the playlist.
func NewController(config Config, pl *playlist.Playlist, engine Engine, presenter Presenter) *Controller {
	return &Controller{
		machine:   NewMachine(pl),
		panel:     input.NewPanel(config.DebounceWindow),
		engine:    engine,
		presenter: presenter,
	}
}

// Begin shows the initial selection.
func (c *Controller) Begin() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cursor := c.machine.Cursor(); cursor >= 0 {
		c.showLocked(cursor)
		return
	}
	zlog.Warn().Msg("playback: playlist is empty, nothing to select")
}

// Tick runs one iteration of the control loop.
// Button presses are applied first, in prev/play/next order; then an active
// session is pumped once and its end is handled in the same tick.
func (c *Controller) Tick(levels input.Levels, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, b := range c.panel.Update(levels, now) {
		zlog.Debug().Msgf("playback: button pressed: button=%s", b)
		c.dispatchLocked(Event{Type: eventForButton(b)})
	}

	if !c.machine.State().IsPlaying() {
		return
	}
	if !c.engine.Pump() {
		zlog.Debug().Msgf("playback: stream exhausted: track=%s", c.sessionTrack)
		c.dispatchLocked(Event{Type: EventTrackEnded})
	}
}

// Dispatch applies a single event outside of a tick.
func (c *Controller) Dispatch(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dispatchLocked(ev)
}

// Replace swaps in a rescanned playlist. Any session is stopped first.
func (c *Controller) Replace(pl *playlist.Playlist) {
	c.mu.Lock()
	defer c.mu.Unlock()

	zlog.Info().Msgf("playback: replacing playlist: tracks=%d", pl.Len())
	c.dispatchLocked(Event{Type: EventPlaylistReplaced, Playlist: pl})
	if pl.IsEmpty() {
		zlog.Warn().Msg("playback: playlist is empty, nothing to select")
	}
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// Cursor returns the selected index, or -1 for an empty playlist.
func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Cursor()
}

// Current returns the selected track.
func (c *Controller) Current() (track.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Playlist().At(c.machine.Cursor())
}

// Close stops any active session.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine.State().IsPlaying() {
		c.machine.state = Idle()
	}
	c.stopLocked()
}

func (c *Controller) dispatchLocked(ev Event) {
	before := c.machine.State()
	cmds := c.machine.Handle(ev)
	zlog.Debug().Msgf("playback: event handled: event=%s state=%s->%s commands=%d",
		ev.Type, before, c.machine.State(), len(cmds))
	c.executeLocked(cmds)
}

// executeLocked runs commands in order. A failed start drops the rest of the
// batch and feeds EventStartFailed back into the machine.
func (c *Controller) executeLocked(cmds []Command) {
	for _, cmd := range cmds {
		switch cmd.Type {
		case CommandStop:
			c.stopLocked()
		case CommandStart:
			if err := c.startLocked(cmd.Track); err != nil {
				zlog.Error().Err(err).Msgf("playback: failed to start track: index=%d", cmd.Track)
				c.dispatchLocked(Event{Type: EventStartFailed})
				return
			}
		case CommandShow:
			c.showLocked(cmd.Track)
		}
	}
}

func (c *Controller) startLocked(index int) error {
	trk, ok := c.machine.Playlist().At(index)
	if !ok {
		return errors.Wrapf(ErrNoTrack, "index %d", index)
	}

	if err := c.engine.Start(trk.ID); err != nil {
		return errors.Wrapf(err, "start %s", trk.ID)
	}

	c.sessionTrack = trk.ID
	c.sessionStarted = time.Now()
	zlog.Info().Msgf("playback: started: index=%d track=%s", index, trk.ID)
	return nil
}

func (c *Controller) stopLocked() {
	if c.sessionTrack != "" {
		zlog.Info().Msgf("playback: stopped: track=%s played=%v",
			c.sessionTrack, time.Since(c.sessionStarted).Round(time.Millisecond))
	}
	c.engine.Stop()
	c.sessionTrack = ""
	c.sessionStarted = time.Time{}
}

func (c *Controller) showLocked(index int) {
	trk, ok := c.machine.Playlist().At(index)
	if !ok {
		return
	}
	song, artist := track.DeriveDisplayName(trk.ID)
	zlog.Debug().Msgf("playback: showing selection: index=%d song=%q artist=%q", index, song, artist)
	c.presenter.ShowSelection(song, artist)
}

func eventForButton(b input.Button) EventType {
	switch b {
	case input.ButtonPrev:
		return EventPrevRequested
	case input.ButtonNext:
		return EventNextRequested
	default:
		return EventPlayRequested
	}
}
