package playback

import (
	"github.com/osa030/buttonbox/internal/domain/playlist"
	zlog "github.com/rs/zerolog/log"
)

// Machine is the pure playback state machine.
// It owns the cursor and the state and turns events into commands; it never
// touches the decode engine or the presenter itself.
type Machine struct {
	playlist *playlist.Playlist
	cursor   int
	state    State
}

// NewMachine creates an idle machine positioned on the first track.
func NewMachine(pl *playlist.Playlist) *Machine {
	if pl == nil {
		pl = playlist.Empty()
	}
	return &Machine{
		playlist: pl,
		cursor:   0,
		state:    Idle(),
	}
}

// State returns the current playback state.
func (m *Machine) State() State {
	return m.state
}

// Cursor returns the selected index, or -1 when the playlist is empty.
func (m *Machine) Cursor() int {
	if m.playlist.IsEmpty() {
		return -1
	}
	return m.cursor
}

// Playlist returns the current playlist.
func (m *Machine) Playlist() *playlist.Playlist {
	return m.playlist
}

// Handle applies one event and returns the commands to execute, in order.
func (m *Machine) Handle(ev Event) []Command {
	switch ev.Type {
	case EventPlayRequested:
		return m.onPlay()
	case EventPrevRequested:
		return m.onStep(playlist.Backward)
	case EventNextRequested:
		return m.onStep(playlist.Forward)
	case EventTrackEnded:
		return m.onTrackEnded()
	case EventStartFailed:
		return m.onStartFailed()
	case EventPlaylistReplaced:
		return m.onPlaylistReplaced(ev.Playlist)
	default:
		zlog.Warn().Msgf("playback: ignoring unknown event: type=%d", ev.Type)
		return nil
	}
}

func (m *Machine) onPlay() []Command {
	if m.playlist.IsEmpty() {
		zlog.Debug().Msg("playback: play ignored: playlist is empty")
		return nil
	}

	if m.state.IsPlaying() {
		m.state = Idle()
		return []Command{Stop(), Show(m.cursor)}
	}

	m.state = Playing(m.cursor)
	return []Command{Start(m.cursor), Show(m.cursor)}
}

func (m *Machine) onStep(dir playlist.Direction) []Command {
	next, ok := m.playlist.Advance(m.cursor, dir)
	if !ok {
		zlog.Debug().Msgf("playback: navigation ignored: playlist is empty: direction=%d", dir)
		return nil
	}
	m.cursor = next

	if m.state.IsPlaying() {
		m.state = Playing(m.cursor)
		return []Command{Stop(), Start(m.cursor), Show(m.cursor)}
	}
	return []Command{Show(m.cursor)}
}

func (m *Machine) onTrackEnded() []Command {
	if !m.state.IsPlaying() {
		return nil
	}

	next, ok := m.playlist.Advance(m.cursor, playlist.Forward)
	if !ok {
		m.state = Idle()
		return []Command{Stop()}
	}
	m.cursor = next
	m.state = Playing(m.cursor)
	return []Command{Stop(), Start(m.cursor), Show(m.cursor)}
}

func (m *Machine) onStartFailed() []Command {
	m.state = Idle()
	if m.playlist.IsEmpty() {
		return []Command{Stop()}
	}
	return []Command{Stop(), Show(m.cursor)}
}

func (m *Machine) onPlaylistReplaced(pl *playlist.Playlist) []Command {
	if pl == nil {
		pl = playlist.Empty()
	}

	var cmds []Command
	if m.state.IsPlaying() {
		cmds = append(cmds, Stop())
	}

	m.playlist = pl
	m.cursor = 0
	m.state = Idle()

	if !pl.IsEmpty() {
		cmds = append(cmds, Show(m.cursor))
	}
	return cmds
}
