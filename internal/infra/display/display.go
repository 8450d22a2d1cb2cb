// Package display provides presenters for the current selection.
package display

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
)

// Presenter shows a selection.
type Presenter interface {
	ShowSelection(song, artist string)
}

// New creates the presenter named by kind. Console output goes to out, or
// stdout when out is nil.
func New(kind string, settings map[string]any, out io.Writer) (Presenter, error) {
	if out == nil {
		out = os.Stdout
	}

	switch kind {
	case "console":
		var cfg ConsoleConfig
		if err := decodeSettings(settings, &cfg); err != nil {
			return nil, errors.Wrap(err, "console presenter")
		}
		return NewConsole(out, cfg), nil
	case "log":
		return NewLog(), nil
	default:
		return nil, errors.Newf("unsupported presenter type: %s", kind)
	}
}

func decodeSettings(settings map[string]any, out any) error {
	if err := mapstructure.Decode(settings, out); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}

// Log writes every selection to the structured log.
type Log struct{}

// NewLog creates a log presenter.
func NewLog() *Log {
	return &Log{}
}

func (l *Log) ShowSelection(song, artist string) {
	zlog.Info().Str("song", song).Str("artist", artist).Msg("display: selection")
}
