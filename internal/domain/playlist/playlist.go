// Package playlist provides the Playlist domain entity.
package playlist

import (
	"sort"

	"github.com/osa030/buttonbox/internal/domain/track"
)

// DefaultCapacity is the number of entries kept when no capacity is configured.
const DefaultCapacity = 15

// Direction is a cursor step.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

// Playlist is an ordered, read-only list of tracks.
// It is built once and replaced as a whole on rescan.
type Playlist struct {
	tracks []track.Track
}

// Empty returns a playlist without tracks.
func Empty() *Playlist {
	return &Playlist{}
}

// Build sorts the identifiers lexicographically and keeps at most capacity of them.
// A non-positive capacity means DefaultCapacity. The input slice is not modified.
func Build(entries []string, capacity int) *Playlist {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	ids := make([]string, len(entries))
	copy(ids, entries)
	sort.Strings(ids)

	if len(ids) > capacity {
		ids = ids[:capacity]
	}

	tracks := make([]track.Track, len(ids))
	for i, id := range ids {
		tracks[i] = track.New(id)
	}
	return &Playlist{tracks: tracks}
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	if p == nil {
		return 0
	}
	return len(p.tracks)
}

// IsEmpty reports whether the playlist has no tracks.
func (p *Playlist) IsEmpty() bool {
	return p.Len() == 0
}

// At returns the track at index i.
func (p *Playlist) At(i int) (track.Track, bool) {
	if i < 0 || i >= p.Len() {
		return track.Track{}, false
	}
	return p.tracks[i], true
}

// Advance moves the cursor one step in the given direction, wrapping at both ends.
// It returns false and leaves the cursor untouched when the playlist is empty.
func (p *Playlist) Advance(cursor int, dir Direction) (int, bool) {
	n := p.Len()
	if n == 0 {
		return cursor, false
	}
	return ((cursor+int(dir))%n + n) % n, true
}

// TrackIDs returns all track IDs in the playlist.
func (p *Playlist) TrackIDs() []string {
	ids := make([]string, p.Len())
	for i, t := range p.tracks {
		ids[i] = t.ID
	}
	return ids
}
