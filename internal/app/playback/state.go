// Package playback provides the player state machine and the controller that
// owns the decode session.
package playback

import "fmt"

// Kind represents the playback state tag.
type Kind int

const (
	KindIdle    Kind = iota // No decode session
	KindPlaying             // Exactly one decode session for State.Track
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// State is the tagged playback state. Track is meaningful only while playing.
type State struct {
	Kind  Kind
	Track int
}

// Idle returns the idle state.
func Idle() State {
	return State{Kind: KindIdle, Track: -1}
}

// Playing returns the state for a session on track i.
func Playing(i int) State {
	return State{Kind: KindPlaying, Track: i}
}

// IsPlaying reports whether a session is active.
func (s State) IsPlaying() bool {
	return s.Kind == KindPlaying
}

// String returns the string representation of the state.
func (s State) String() string {
	if s.Kind == KindPlaying {
		return fmt.Sprintf("playing(%d)", s.Track)
	}
	return s.Kind.String()
}
