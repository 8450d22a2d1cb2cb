package filter

import "github.com/osa030/buttonbox/internal/domain/playlist"

const directoryFilterName = "directory_filter"

// DirectoryFilter rejects sub-directories; the library is a flat folder.
type DirectoryFilter struct{}

func (f *DirectoryFilter) Name() string {
	return directoryFilterName
}

func (f *DirectoryFilter) Description() string {
	return "Skips sub-directories"
}

func (f *DirectoryFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *DirectoryFilter) Check(e playlist.Entry) Result {
	if e.IsDir {
		return Reject("directory")
	}
	return Accept()
}

func init() {
	Register(directoryFilterName, func() Filter {
		return &DirectoryFilter{}
	})
}
