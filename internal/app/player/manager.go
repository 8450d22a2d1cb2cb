// Package player runs the control loop of the button box.
package player

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/buttonbox/internal/app/filter"
	"github.com/osa030/buttonbox/internal/app/input"
	"github.com/osa030/buttonbox/internal/app/playback"
	"github.com/osa030/buttonbox/internal/domain/playlist"
)

// Errors
var (
	ErrEmptyLibrary   = errors.New("library contains no tracks")
	ErrAlreadyRunning = errors.New("player is already running")
)

// Lister lists the entries of a library directory.
type Lister interface {
	ListEntries(ctx context.Context, dir string) ([]playlist.Entry, error)
}

// Config holds player configuration.
type Config struct {
	LibraryDir     string
	Capacity       int
	Tick           time.Duration
	DebounceWindow time.Duration
}

// Deps are the collaborators of the player.
type Deps struct {
	Lister    Lister
	Chain     *filter.Chain
	Engine    playback.Engine
	Presenter playback.Presenter
	Source    input.Source

	// Changes triggers a rescan on every receive. Optional.
	Changes <-chan struct{}
	// Quit stops the loop when closed. Optional.
	Quit <-chan struct{}
}

// Status is a snapshot of the player.
type Status struct {
	State  playback.State
	Cursor int
	Tracks int
}

// Manager owns the controller and drives it from a single goroutine.
type Manager struct {
	mu sync.Mutex

	id         string
	config     Config
	deps       Deps
	controller *playback.Controller
	tracks     int
	running    bool

	rescan chan struct{}
	done   chan struct{}
}

// NewManager creates a new player.
func NewManager(cfg Config, deps Deps) (*Manager, error) {
	switch {
	case deps.Lister == nil:
		return nil, errors.New("lister is required")
	case deps.Engine == nil:
		return nil, errors.New("engine is required")
	case deps.Presenter == nil:
		return nil, errors.New("presenter is required")
	case deps.Source == nil:
		return nil, errors.New("input source is required")
	}
	if deps.Chain == nil {
		deps.Chain = filter.DefaultChain()
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = playlist.DefaultCapacity
	}
	if cfg.Tick <= 0 {
		cfg.Tick = 10 * time.Millisecond
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = input.DefaultWindow
	}

	return &Manager{
		id:     uuid.New().String(),
		config: cfg,
		deps:   deps,
		rescan: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}, nil
}

// Rebuild enumerates dir, filters the entries and builds the playlist.
// On failure the returned playlist is empty and the error describes why.
func Rebuild(ctx context.Context, lister Lister, dir string, capacity int, chain *filter.Chain) (*playlist.Playlist, error) {
	entries, err := lister.ListEntries(ctx, dir)
	if err != nil {
		return playlist.Empty(), errors.Wrap(err, "failed to enumerate library")
	}

	accepted := chain.Apply(entries)
	if len(accepted) == 0 {
		return playlist.Empty(), errors.Wrapf(ErrEmptyLibrary, "dir=%s entries=%d", dir, len(entries))
	}
	if len(accepted) > capacity {
		zlog.Warn().Msgf("player: library exceeds capacity: tracks=%d capacity=%d", len(accepted), capacity)
	}
	return playlist.Build(playlist.EntryIDs(accepted), capacity), nil
}

// Run loads the library and runs the control loop until ctx is cancelled
// or the quit channel is closed. The engine session is stopped on return.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.running = true
	m.mu.Unlock()
	defer close(m.done)

	zlog.Info().Msgf("player: starting: id=%s dir=%s capacity=%d tick=%s",
		m.id, m.config.LibraryDir, m.config.Capacity, m.config.Tick)

	pl := m.rebuild(ctx)
	controller := playback.NewController(playback.Config{
		DebounceWindow: m.config.DebounceWindow,
	}, pl, m.deps.Engine, m.deps.Presenter)

	m.mu.Lock()
	m.controller = controller
	m.tracks = pl.Len()
	m.mu.Unlock()

	controller.Begin()
	defer controller.Close()

	ticker := time.NewTicker(m.config.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zlog.Info().Msg("player: context cancelled, stopping")
			return nil
		case <-m.deps.Quit:
			zlog.Info().Msg("player: quit requested, stopping")
			return nil
		case <-m.rescan:
			zlog.Info().Msg("player: rescan requested")
			m.reload(ctx, controller)
		case <-m.deps.Changes:
			zlog.Info().Msg("player: library changed")
			m.reload(ctx, controller)
		case now := <-ticker.C:
			controller.Tick(m.deps.Source.Levels(now), now)
		}
	}
}

// rebuild loads the library, logging failures. It never returns nil.
func (m *Manager) rebuild(ctx context.Context) *playlist.Playlist {
	pl, err := Rebuild(ctx, m.deps.Lister, m.config.LibraryDir, m.config.Capacity, m.deps.Chain)
	if err != nil {
		zlog.Error().Err(err).Msgf("player: library unavailable: dir=%s", m.config.LibraryDir)
	} else {
		zlog.Info().Msgf("player: library loaded: tracks=%d", pl.Len())
	}
	return pl
}

// reload rebuilds the playlist and hands it to the controller.
func (m *Manager) reload(ctx context.Context, controller *playback.Controller) {
	pl := m.rebuild(ctx)

	m.mu.Lock()
	m.tracks = pl.Len()
	m.mu.Unlock()

	controller.Replace(pl)
}

// RequestRescan asks the loop to rebuild the playlist before the next tick.
// Requests made while one is pending are merged.
func (m *Manager) RequestRescan() {
	select {
	case m.rescan <- struct{}{}:
	default:
	}
}

// Status returns a snapshot of the player. Before Run it reports an idle,
// empty player.
func (m *Manager) Status() Status {
	m.mu.Lock()
	controller := m.controller
	tracks := m.tracks
	m.mu.Unlock()

	if controller == nil {
		return Status{State: playback.Idle(), Cursor: -1}
	}
	return Status{
		State:  controller.State(),
		Cursor: controller.Cursor(),
		Tracks: tracks,
	}
}

// Done returns a channel that is closed when Run returns.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}
