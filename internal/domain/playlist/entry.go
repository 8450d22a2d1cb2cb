package playlist

// Entry is one item returned by a library directory listing.
type Entry struct {
	ID    string // Path-like identifier used for playback
	Name  string // Base name within the directory
	IsDir bool
	Size  int64
}

// EntryIDs returns the identifiers of the entries, in order.
func EntryIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
