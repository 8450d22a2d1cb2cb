package audio

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
)

// Sink receives decoded samples. Write never blocks; callers check Ready first.
type Sink interface {
	SampleRate() beep.SampleRate
	// Ready reports whether another chunk can be written without blocking.
	Ready() bool
	// Write copies samples into the sink.
	Write(samples [][2]float64)
	// Flush drops samples that have not been played yet.
	Flush()
	Close() error
}

// SpeakerConfig represents the settings of the speaker sink.
type SpeakerConfig struct {
	BufferMs    int `mapstructure:"buffer_ms" default:"100" validate:"gte=10,lte=2000"`
	QueueChunks int `mapstructure:"queue_chunks" default:"8" validate:"gte=1,lte=256"`
}

// DiscardConfig represents the settings of the discard sink.
// Unpaced accepts samples as fast as the loop pumps them.
type DiscardConfig struct {
	Unpaced bool `mapstructure:"unpaced"`
}

// NewSink creates the sink named by kind. Settings are decoded with mapstructure.
func NewSink(kind string, sampleRate int, settings map[string]any) (Sink, error) {
	rate := beep.SampleRate(sampleRate)

	switch kind {
	case "speaker":
		var cfg SpeakerConfig
		if err := decodeSettings(settings, &cfg); err != nil {
			return nil, errors.Wrap(err, "speaker sink")
		}
		return NewSpeakerSink(rate, cfg)
	case "discard", "":
		var cfg DiscardConfig
		if err := decodeSettings(settings, &cfg); err != nil {
			return nil, errors.Wrap(err, "discard sink")
		}
		return NewDiscardSink(rate, !cfg.Unpaced), nil
	default:
		return nil, errors.Newf("unsupported sink type: %s", kind)
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

// SpeakerSink plays samples through the default audio device.
// Written chunks are queued; the device callback drains the queue and plays
// silence when it runs dry.
type SpeakerSink struct {
	rate  beep.SampleRate
	queue chan [][2]float64

	mu      sync.Mutex // guards current, touched by the device callback
	current [][2]float64
}

// NewSpeakerSink initializes the speaker and starts playback of the queue.
func NewSpeakerSink(rate beep.SampleRate, cfg SpeakerConfig) (*SpeakerSink, error) {
	if err := speaker.Init(rate, rate.N(time.Duration(cfg.BufferMs)*time.Millisecond)); err != nil {
		return nil, errors.Wrap(err, "failed to initialize speaker")
	}

	s := &SpeakerSink{
		rate:  rate,
		queue: make(chan [][2]float64, cfg.QueueChunks),
	}
	speaker.Play(beep.StreamerFunc(s.stream))
	zlog.Info().Msgf("audio: speaker initialized: rate=%d buffer_ms=%d", rate, cfg.BufferMs)
	return s, nil
}

func (s *SpeakerSink) SampleRate() beep.SampleRate {
	return s.rate
}

func (s *SpeakerSink) Ready() bool {
	return len(s.queue) < cap(s.queue)
}

func (s *SpeakerSink) Write(samples [][2]float64) {
	chunk := make([][2]float64, len(samples))
	copy(chunk, samples)
	select {
	case s.queue <- chunk:
	default:
		zlog.Warn().Msg("audio: speaker queue full, dropping chunk")
	}
}

func (s *SpeakerSink) Flush() {
	for {
		select {
		case <-s.queue:
		default:
			s.mu.Lock()
			s.current = nil
			s.mu.Unlock()
			return
		}
	}
}

func (s *SpeakerSink) Close() error {
	s.Flush()
	speaker.Clear()
	speaker.Close()
	return nil
}

// stream is called from the audio device goroutine and must not block.
func (s *SpeakerSink) stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filled := 0
	for filled < len(samples) {
		if len(s.current) == 0 {
			select {
			case chunk := <-s.queue:
				s.current = chunk
			default:
				for i := filled; i < len(samples); i++ {
					samples[i] = [2]float64{}
				}
				return len(samples), true
			}
		}
		n := copy(samples[filled:], s.current)
		s.current = s.current[n:]
		filled += n
	}
	return filled, true
}

// DiscardSink drops samples. In realtime mode it accepts samples no faster
// than the sample rate, so a headless player keeps track durations.
type DiscardSink struct {
	rate     beep.SampleRate
	realtime bool
	now      func() time.Time

	start   time.Time
	written int
}

// NewDiscardSink creates a discard sink.
func NewDiscardSink(rate beep.SampleRate, realtime bool) *DiscardSink {
	return &DiscardSink{
		rate:     rate,
		realtime: realtime,
		now:      time.Now,
	}
}

func (d *DiscardSink) SampleRate() beep.SampleRate {
	return d.rate
}

func (d *DiscardSink) Ready() bool {
	if !d.realtime || d.start.IsZero() {
		return true
	}
	return d.written <= d.rate.N(d.now().Sub(d.start))
}

func (d *DiscardSink) Write(samples [][2]float64) {
	if d.start.IsZero() {
		d.start = d.now()
	}
	d.written += len(samples)
}

func (d *DiscardSink) Flush() {
	d.start = time.Time{}
	d.written = 0
}

// Written returns the number of samples accepted since the last flush.
func (d *DiscardSink) Written() int {
	return d.written
}

func (d *DiscardSink) Close() error {
	return nil
}
