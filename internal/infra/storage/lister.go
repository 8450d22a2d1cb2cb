// Package storage enumerates the library volume.
package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/osa030/buttonbox/internal/domain/playlist"
)

// Errors
var (
	ErrNotFound = errors.New("library directory not found")
	ErrIO       = errors.New("library directory unreadable")
)

// Lister lists the entries of a library directory.
type Lister interface {
	ListEntries(ctx context.Context, dir string) ([]playlist.Entry, error)
}

// DirLister lists a directory on the local filesystem. It does not recurse.
type DirLister struct{}

// NewDirLister creates a new directory lister.
func NewDirLister() *DirLister {
	return &DirLister{}
}

// ListEntries returns every entry in dir. Entry IDs are dir joined with the name.
// Failures are marked with ErrNotFound or ErrIO.
func (l *DirLister) ListEntries(ctx context.Context, dir string) ([]playlist.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Mark(errors.Wrapf(err, "list %s", dir), ErrNotFound)
		}
		return nil, errors.Mark(errors.Wrapf(err, "list %s", dir), ErrIO)
	}

	entries := make([]playlist.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		e := playlist.Entry{
			ID:    filepath.Join(dir, de.Name()),
			Name:  de.Name(),
			IsDir: de.IsDir(),
		}
		if info, err := de.Info(); err == nil {
			e.Size = info.Size()
		}
		entries = append(entries, e)
	}
	return entries, nil
}
