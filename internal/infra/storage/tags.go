package storage

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
)

// Tags holds embedded metadata read from an audio file.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Format string
}

// ReadTags reads the embedded tags of the file at path.
func ReadTags(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Tags{}, errors.Wrapf(err, "read tags %s", path)
	}

	return Tags{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
		Format: string(m.FileType()),
	}, nil
}
