package audio

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gopxl/beep"
	zlog "github.com/rs/zerolog/log"
)

// Errors
var (
	ErrSessionActive = errors.New("decode session already active")
)

// Config holds engine configuration.
type Config struct {
	ChunkSize       int // Samples decoded per pump
	ResampleQuality int // beep resampler quality, 1..64
}

// session is the file stream plus decoder of the track being played.
type session struct {
	id        string
	track     string
	file      *os.File
	streamer  beep.StreamSeekCloser
	stream    beep.Streamer // streamer, resampled to the sink rate if needed
	format    beep.Format
	samples   int
	exhausted bool
	startedAt time.Time
}

// Engine decodes one track at a time into a Sink.
// It is not safe for concurrent use; the control loop is its only caller.
type Engine struct {
	config  Config
	sink    Sink
	session *session
	buf     [][2]float64
}

// NewEngine creates an engine writing to sink.
func NewEngine(config Config, sink Sink) *Engine {
	if config.ChunkSize <= 0 {
		config.ChunkSize = 1024
	}
	if config.ResampleQuality <= 0 {
		config.ResampleQuality = 4
	}
	return &Engine{
		config: config,
		sink:   sink,
		buf:    make([][2]float64, config.ChunkSize),
	}
}

// Start opens and decodes the file at id.
func (e *Engine) Start(id string) error {
	if e.session != nil {
		return errors.Wrapf(ErrSessionActive, "cannot start %s while %s is playing", id, e.session.track)
	}

	file, streamer, format, err := decode(id)
	if err != nil {
		return err
	}

	var stream beep.Streamer = streamer
	if rate := e.sink.SampleRate(); format.SampleRate != rate {
		stream = beep.Resample(e.config.ResampleQuality, format.SampleRate, rate, streamer)
	}

	e.session = &session{
		id:        uuid.New().String(),
		track:     id,
		file:      file,
		streamer:  streamer,
		stream:    stream,
		format:    format,
		startedAt: time.Now(),
	}
	zlog.Debug().Msgf("audio: session opened: session=%s track=%s rate=%d channels=%d",
		e.session.id, id, format.SampleRate, format.NumChannels)
	return nil
}

// Pump decodes at most one chunk into the sink.
// It returns false when the stream is exhausted or no session exists.
func (e *Engine) Pump() bool {
	s := e.session
	if s == nil || s.exhausted {
		return false
	}
	if !e.sink.Ready() {
		return true
	}

	n, ok := s.stream.Stream(e.buf)
	if n > 0 {
		e.sink.Write(e.buf[:n])
		s.samples += n
	}
	if !ok {
		if err := s.streamer.Err(); err != nil {
			zlog.Error().Err(err).Msgf("audio: decode error: session=%s track=%s", s.id, s.track)
		}
		s.exhausted = true
		return false
	}
	return true
}

// Stop closes the decoder and the file and drops queued samples.
func (e *Engine) Stop() {
	s := e.session
	if s == nil {
		return
	}
	e.session = nil

	if err := s.streamer.Close(); err != nil {
		zlog.Warn().Err(err).Msgf("audio: failed to close decoder: session=%s", s.id)
	}
	// Some decoders close the underlying reader themselves.
	_ = s.file.Close()
	e.sink.Flush()

	zlog.Debug().Msgf("audio: session closed: session=%s track=%s samples=%d elapsed=%v",
		s.id, s.track, s.samples, time.Since(s.startedAt).Round(time.Millisecond))
}

// IsActive reports whether a session exists.
func (e *Engine) IsActive() bool {
	return e.session != nil
}

// Close stops any session and closes the sink.
func (e *Engine) Close() error {
	e.Stop()
	return e.sink.Close()
}
