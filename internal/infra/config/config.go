// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables that take precedence over file values.
const (
	EnvLibraryDir = "BUTTONBOX_LIBRARY_DIR"
	EnvDisplay    = "BUTTONBOX_DISPLAY"
)

// Config represents the application configuration.
type Config struct {
	Library  LibraryConfig           `yaml:"library"`
	Filters  map[string]FilterConfig `yaml:"filters"`
	Input    InputConfig             `yaml:"input"`
	Playback PlaybackConfig          `yaml:"playback"`
	Audio    AudioConfig             `yaml:"audio"`
	Display  DisplayConfig           `yaml:"display"`
	Hooks    HooksConfig             `yaml:"hooks"`
}

// LibraryConfig represents the music directory configuration.
type LibraryConfig struct {
	Dir           string `yaml:"dir" default:"./music" validate:"required"`
	Capacity      int    `yaml:"capacity" default:"15" validate:"gte=1,lte=10000"`
	Watch         bool   `yaml:"watch"`
	WatchSettleMs int    `yaml:"watch_settle_ms" default:"1000" validate:"gte=0,lte=60000"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// InputConfig represents the button source configuration.
type InputConfig struct {
	Type        string             `yaml:"type" default:"keyboard" validate:"oneof=keyboard script"`
	DebounceMs  int                `yaml:"debounce_ms" default:"200" validate:"gte=1,lte=5000"`
	HoldMs      int                `yaml:"hold_ms" default:"250" validate:"gte=1,lte=10000"`
	Script      []ScriptStepConfig `yaml:"script" validate:"dive"`
	ExitAfterMs int                `yaml:"exit_after_ms" validate:"gte=0"`
}

// ScriptStepConfig represents one scripted button press.
type ScriptStepConfig struct {
	AtMs   int    `yaml:"at_ms" validate:"gte=0"`
	Button string `yaml:"button" validate:"oneof=prev play next"`
	HoldMs int    `yaml:"hold_ms" default:"250" validate:"gte=1"`
}

// PlaybackConfig represents the control loop configuration.
type PlaybackConfig struct {
	TickMs int `yaml:"tick_ms" default:"10" validate:"gte=1,lte=1000"`
}

// AudioConfig represents the decode engine configuration.
type AudioConfig struct {
	SampleRate      int          `yaml:"sample_rate" default:"44100" validate:"gte=8000,lte=192000"`
	ChunkSize       int          `yaml:"chunk_size" default:"1024" validate:"gte=64,lte=65536"`
	ResampleQuality int          `yaml:"resample_quality" default:"4" validate:"gte=1,lte=6"`
	Output          OutputConfig `yaml:"output"`
}

// OutputConfig represents the audio sink configuration.
type OutputConfig struct {
	Type     string         `yaml:"type" default:"speaker" validate:"oneof=speaker discard"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// DisplayConfig represents the presenters configuration.
type DisplayConfig struct {
	Presenters []PresenterConfig `yaml:"presenters" default:"[{\"type\":\"console\"}]" validate:"min=1,dive"`
}

// PresenterConfig represents a single presenter.
type PresenterConfig struct {
	Type     string         `yaml:"type" json:"type" validate:"required"`
	Settings map[string]any `yaml:"settings,omitempty" json:"settings,omitempty"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// Load loads configuration from a YAML file.
// A missing file yields the default configuration.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, errors.Wrap(err, "failed to read config file")
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv(EnvLibraryDir); v != "" {
		c.Library.Dir = v
	}
	if v := os.Getenv(EnvDisplay); v != "" {
		c.Display.Presenters = []PresenterConfig{{Type: v}}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	// A key press must outlast the debounce window to register.
	if c.Input.Type == "keyboard" && c.Input.HoldMs <= c.Input.DebounceMs {
		return errors.Newf("input.hold_ms (%d) must be greater than input.debounce_ms (%d)", c.Input.HoldMs, c.Input.DebounceMs)
	}
	for i, step := range c.Input.Script {
		if step.HoldMs <= c.Input.DebounceMs {
			return errors.Newf("input.script[%d].hold_ms (%d) must be greater than input.debounce_ms (%d)", i, step.HoldMs, c.Input.DebounceMs)
		}
	}

	return nil
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// DebounceWindow returns the debounce window.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.Input.DebounceMs) * time.Millisecond
}

// Hold returns how long a key press holds its button.
func (c *Config) Hold() time.Duration {
	return time.Duration(c.Input.HoldMs) * time.Millisecond
}

// ExitAfter returns the delay after the script ends before the player quits.
func (c *Config) ExitAfter() time.Duration {
	return time.Duration(c.Input.ExitAfterMs) * time.Millisecond
}

// Tick returns the control loop period.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.Playback.TickMs) * time.Millisecond
}

// WatchSettle returns how long the watcher waits for changes to settle.
func (c *Config) WatchSettle() time.Duration {
	return time.Duration(c.Library.WatchSettleMs) * time.Millisecond
}
