// Package track provides the Track domain entity.
package track

import (
	"path/filepath"
	"strings"
)

const (
	// Separator splits a file stem into song and artist.
	Separator = "_"
	// UnknownArtist is shown when the stem carries no separator.
	UnknownArtist = "Unknown"
)

// Track represents a single playable file on the library volume.
// Display fields are derived from the identifier on demand.
type Track struct {
	ID string // Path-like identifier, e.g. "/playlist/Song_Artist.mp3"
}

// New creates a track for the given identifier.
func New(id string) Track {
	return Track{ID: id}
}

// Song returns the song name derived from the identifier.
func (t Track) Song() string {
	song, _ := DeriveDisplayName(t.ID)
	return song
}

// Artist returns the artist name derived from the identifier.
func (t Track) Artist() string {
	_, artist := DeriveDisplayName(t.ID)
	return artist
}

// DeriveDisplayName splits an identifier into song and artist names.
// The directory and extension are dropped first, then the stem is cut at the
// first Separator. Without a separator the whole stem is the song and the
// artist is UnknownArtist.
func DeriveDisplayName(id string) (song, artist string) {
	stem := filepath.Base(id)
	if stem == "." || stem == string(filepath.Separator) {
		stem = ""
	}
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))

	song, artist, found := strings.Cut(stem, Separator)
	if !found {
		return stem, UnknownArtist
	}
	return song, artist
}
