package player

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/buttonbox/internal/app/filter"
	"github.com/osa030/buttonbox/internal/app/input"
	"github.com/osa030/buttonbox/internal/app/playback"
	"github.com/osa030/buttonbox/internal/domain/playlist"
)

const (
	testTick     = time.Millisecond
	testDebounce = 20 * time.Millisecond
	testHold     = 60 * time.Millisecond
	waitFor      = 2 * time.Second
	pollEvery    = 2 * time.Millisecond
)

var errUnreadable = errors.New("unreadable")

type fakeLister struct {
	mu      sync.Mutex
	entries []playlist.Entry
	err     error
	calls   int
}

func (l *fakeLister) ListEntries(_ context.Context, dir string) ([]playlist.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return append([]playlist.Entry(nil), l.entries...), nil
}

func (l *fakeLister) set(names ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = files(names...)
}

func (l *fakeLister) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func files(names ...string) []playlist.Entry {
	entries := make([]playlist.Entry, len(names))
	for i, n := range names {
		entries[i] = playlist.Entry{ID: "/music/" + n, Name: n}
	}
	return entries
}

type fakeEngine struct {
	mu     sync.Mutex
	active string
	log    []string
}

func (e *fakeEngine) Start(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = id
	e.log = append(e.log, "start:"+id)
	return nil
}

func (e *fakeEngine) Pump() bool { return true }

func (e *fakeEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active != "" {
		e.log = append(e.log, "stop:"+e.active)
	}
	e.active = ""
}

func (e *fakeEngine) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active != ""
}

func (e *fakeEngine) activeID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *fakeEngine) calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.log...)
}

type fakePresenter struct {
	mu    sync.Mutex
	songs []string
}

func (p *fakePresenter) ShowSelection(song, artist string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.songs = append(p.songs, song+"/"+artist)
}

func (p *fakePresenter) last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.songs) == 0 {
		return ""
	}
	return p.songs[len(p.songs)-1]
}

// heldSource holds a button low until a deadline.
type heldSource struct {
	mu    sync.Mutex
	until [len(input.Buttons)]time.Time
}

func (s *heldSource) press(b input.Button) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.until[b] = time.Now().Add(testHold)
}

func (s *heldSource) Levels(now time.Time) input.Levels {
	s.mu.Lock()
	defer s.mu.Unlock()
	levels := input.Released()
	for _, b := range input.Buttons {
		if now.Before(s.until[b]) {
			levels[b] = input.Low
		}
	}
	return levels
}

type harness struct {
	mgr       *Manager
	lister    *fakeLister
	engine    *fakeEngine
	presenter *fakePresenter
	source    *heldSource
	changes   chan struct{}
	quit      chan struct{}
	errCh     chan error
	cancel    context.CancelFunc
}

func startPlayer(t *testing.T, names ...string) *harness {
	t.Helper()

	h := &harness{
		lister:    &fakeLister{entries: files(names...)},
		engine:    &fakeEngine{},
		presenter: &fakePresenter{},
		source:    &heldSource{},
		changes:   make(chan struct{}, 1),
		quit:      make(chan struct{}),
		errCh:     make(chan error, 1),
	}

	mgr, err := NewManager(Config{
		LibraryDir:     "/music",
		Capacity:       15,
		Tick:           testTick,
		DebounceWindow: testDebounce,
	}, Deps{
		Lister:    h.lister,
		Engine:    h.engine,
		Presenter: h.presenter,
		Source:    h.source,
		Changes:   h.changes,
		Quit:      h.quit,
	})
	require.NoError(t, err)
	h.mgr = mgr

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.errCh <- mgr.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-mgr.Done()
	})

	require.Eventually(t, func() bool { return h.lister.callCount() == 1 }, waitFor, pollEvery)
	return h
}

func (h *harness) press(t *testing.T, b input.Button) {
	t.Helper()
	h.source.press(b)
	// Wait for the release so the next press produces a new edge.
	time.Sleep(testHold + 2*testDebounce)
}

func TestRebuild(t *testing.T) {
	tests := []struct {
		name     string
		entries  []playlist.Entry
		err      error
		capacity int
		wantIDs  []string
		wantErr  error
	}{
		{
			name:     "filters and sorts",
			entries:  append(files("b_x.mp3", "a_y.flac", "notes.txt", ".hidden.mp3"), playlist.Entry{ID: "/music/sub", Name: "sub", IsDir: true}),
			capacity: 15,
			wantIDs:  []string{"/music/a_y.flac", "/music/b_x.mp3"},
		},
		{
			name:     "truncates to capacity",
			entries:  files("c.mp3", "a.mp3", "b.mp3"),
			capacity: 2,
			wantIDs:  []string{"/music/a.mp3", "/music/b.mp3"},
		},
		{
			name:     "enumeration failure",
			err:      errUnreadable,
			capacity: 15,
			wantErr:  errUnreadable,
		},
		{
			name:     "nothing playable",
			entries:  files("cover.jpg", "readme.txt"),
			capacity: 15,
			wantErr:  ErrEmptyLibrary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeLister{entries: tt.entries, err: tt.err}

			pl, err := Rebuild(context.Background(), lister, "/music", tt.capacity, filter.DefaultChain())
			require.NotNil(t, pl)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.True(t, pl.IsEmpty())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, pl.TrackIDs())
		})
	}
}

func TestNewManager_RequiresDeps(t *testing.T) {
	full := Deps{
		Lister:    &fakeLister{},
		Engine:    &fakeEngine{},
		Presenter: &fakePresenter{},
		Source:    &heldSource{},
	}

	tests := []struct {
		name   string
		modify func(d *Deps)
	}{
		{name: "lister", modify: func(d *Deps) { d.Lister = nil }},
		{name: "engine", modify: func(d *Deps) { d.Engine = nil }},
		{name: "presenter", modify: func(d *Deps) { d.Presenter = nil }},
		{name: "source", modify: func(d *Deps) { d.Source = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := full
			tt.modify(&deps)
			_, err := NewManager(Config{}, deps)
			assert.Error(t, err)
		})
	}

	mgr, err := NewManager(Config{}, full)
	require.NoError(t, err)
	assert.Equal(t, Status{State: playback.Idle(), Cursor: -1}, mgr.Status())
}

func TestManager_ShowsFirstSelectionOnStart(t *testing.T) {
	h := startPlayer(t, "Song1_Artist1.mp3", "Song2_Artist2.mp3")

	require.Eventually(t, func() bool { return h.presenter.last() == "Song1/Artist1" }, waitFor, pollEvery)
	status := h.mgr.Status()
	assert.Equal(t, 0, status.Cursor)
	assert.Equal(t, 2, status.Tracks)
	assert.False(t, status.State.IsPlaying())
}

func TestManager_ButtonsDriveController(t *testing.T) {
	h := startPlayer(t, "Song1_Artist1.mp3", "Song2_Artist2.mp3")

	h.press(t, input.ButtonPlay)
	require.Eventually(t, func() bool { return h.engine.activeID() == "/music/Song1_Artist1.mp3" }, waitFor, pollEvery)

	h.press(t, input.ButtonNext)
	require.Eventually(t, func() bool { return h.engine.activeID() == "/music/Song2_Artist2.mp3" }, waitFor, pollEvery)
	assert.Equal(t, "Song2/Artist2", h.presenter.last())

	h.press(t, input.ButtonPlay)
	require.Eventually(t, func() bool { return !h.engine.IsActive() }, waitFor, pollEvery)
	assert.Equal(t, []string{
		"start:/music/Song1_Artist1.mp3",
		"stop:/music/Song1_Artist1.mp3",
		"start:/music/Song2_Artist2.mp3",
		"stop:/music/Song2_Artist2.mp3",
	}, h.engine.calls())
}

func TestManager_RescanStopsPlayback(t *testing.T) {
	h := startPlayer(t, "Song1_Artist1.mp3")

	h.press(t, input.ButtonPlay)
	require.Eventually(t, h.engine.IsActive, waitFor, pollEvery)

	h.lister.set("Alpha_Band.mp3", "Beta_Band.mp3", "Song1_Artist1.mp3")
	h.mgr.RequestRescan()

	require.Eventually(t, func() bool { return h.mgr.Status().Tracks == 3 }, waitFor, pollEvery)
	require.Eventually(t, func() bool { return h.presenter.last() == "Alpha/Band" }, waitFor, pollEvery)
	assert.False(t, h.engine.IsActive())

	status := h.mgr.Status()
	assert.Equal(t, 0, status.Cursor)
	assert.False(t, status.State.IsPlaying())
}

func TestManager_WatcherChangesTriggerRescan(t *testing.T) {
	h := startPlayer(t, "Song1_Artist1.mp3")

	h.lister.set("Song1_Artist1.mp3", "Song2_Artist2.mp3")
	h.changes <- struct{}{}

	require.Eventually(t, func() bool { return h.mgr.Status().Tracks == 2 }, waitFor, pollEvery)
	assert.Equal(t, 2, h.lister.callCount())
}

func TestManager_EmptyLibraryIgnoresButtons(t *testing.T) {
	h := startPlayer(t)

	h.press(t, input.ButtonPlay)
	h.press(t, input.ButtonNext)

	assert.Empty(t, h.engine.calls())
	assert.Empty(t, h.presenter.last())
	assert.Equal(t, -1, h.mgr.Status().Cursor)
}

func TestManager_QuitStopsSession(t *testing.T) {
	h := startPlayer(t, "Song1_Artist1.mp3")

	h.press(t, input.ButtonPlay)
	require.Eventually(t, h.engine.IsActive, waitFor, pollEvery)

	close(h.quit)
	select {
	case err := <-h.errCh:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("player did not stop")
	}
	assert.False(t, h.engine.IsActive())

	select {
	case <-h.mgr.Done():
	default:
		t.Fatal("done not closed")
	}
}

func TestManager_RunOnce(t *testing.T) {
	h := startPlayer(t, "Song1_Artist1.mp3")

	err := h.mgr.Run(context.Background())
	assert.True(t, errors.Is(err, ErrAlreadyRunning))

	h.cancel()
	select {
	case err := <-h.errCh:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("player did not stop")
	}
}
