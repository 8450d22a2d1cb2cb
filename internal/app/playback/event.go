package playback

import "github.com/osa030/buttonbox/internal/domain/playlist"

// EventType represents a playback event type.
type EventType int

const (
	EventPlayRequested    EventType = iota // Play button pressed
	EventPrevRequested                     // Prev button pressed
	EventNextRequested                     // Next button pressed
	EventTrackEnded                        // Decode engine reached end of stream
	EventStartFailed                       // Decode engine rejected the track
	EventPlaylistReplaced                  // Library was rescanned
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventPlayRequested:
		return "play_requested"
	case EventPrevRequested:
		return "prev_requested"
	case EventNextRequested:
		return "next_requested"
	case EventTrackEnded:
		return "track_ended"
	case EventStartFailed:
		return "start_failed"
	case EventPlaylistReplaced:
		return "playlist_replaced"
	default:
		return "unknown"
	}
}

// Event is an input to the state machine.
type Event struct {
	Type     EventType
	Playlist *playlist.Playlist // Only for EventPlaylistReplaced
}

// CommandType represents an action requested by the state machine.
type CommandType int

const (
	CommandStop  CommandType = iota // Release the active session, if any
	CommandStart                    // Start a session for Command.Track
	CommandShow                     // Present Command.Track
)

// String returns the string representation of the command type.
func (c CommandType) String() string {
	switch c {
	case CommandStop:
		return "stop"
	case CommandStart:
		return "start"
	case CommandShow:
		return "show"
	default:
		return "unknown"
	}
}

// Command is an action the controller performs against its collaborators.
type Command struct {
	Type  CommandType
	Track int
}

// Stop returns a stop command.
func Stop() Command {
	return Command{Type: CommandStop, Track: -1}
}

// Start returns a start command for track i.
func Start(i int) Command {
	return Command{Type: CommandStart, Track: i}
}

// Show returns a show command for track i.
func Show(i int) Command {
	return Command{Type: CommandShow, Track: i}
}
