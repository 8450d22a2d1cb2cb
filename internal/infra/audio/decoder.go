// Package audio implements the decode engine on top of gopxl/beep.
package audio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// ErrUnsupportedFormat is returned for files the engine cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// decode opens path and picks a decoder by extension.
// On error the file is closed and nothing is retained.
func decode(path string) (*os.File, beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, beep.Format{}, errors.Wrapf(err, "open %s", path)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		err = errors.Mark(errors.Newf("unsupported extension %q", filepath.Ext(path)), ErrUnsupportedFormat)
	}
	if err != nil {
		_ = f.Close()
		return nil, nil, beep.Format{}, errors.Wrapf(err, "decode %s", path)
	}
	return f, streamer, format, nil
}
