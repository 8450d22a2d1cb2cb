package filter

import (
	"strings"

	"github.com/osa030/buttonbox/internal/domain/playlist"
)

// HiddenFilter rejects dot files, including the "._" resource forks macOS
// leaves on FAT volumes.
type HiddenFilter struct{}

func (f *HiddenFilter) Name() string {
	return "hidden_filter"
}

func (f *HiddenFilter) Description() string {
	return "Skips hidden files"
}

func (f *HiddenFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *HiddenFilter) Check(e playlist.Entry) Result {
	if strings.HasPrefix(e.Name, ".") {
		return Reject("hidden")
	}
	return Accept()
}

func init() {
	Register("hidden_filter", func() Filter {
		return &HiddenFilter{}
	})
}
