package filter

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/buttonbox/internal/domain/playlist"
)

// DefaultExtensions are the formats the decode engine understands.
var DefaultExtensions = []string{".mp3", ".flac", ".wav", ".ogg"}

// ExtensionConfig represents the configuration for ExtensionFilter.
type ExtensionConfig struct {
	Extensions []string `yaml:"extensions" mapstructure:"extensions" default:"[\".mp3\",\".flac\",\".wav\",\".ogg\"]" validate:"min=1,dive,startswith=."`
}

// ExtensionFilter accepts only files with a known audio extension.
// Matching is case-insensitive.
type ExtensionFilter struct {
	config *ExtensionConfig
}

// NewExtensionFilter creates a filter for the given extensions.
func NewExtensionFilter(extensions []string) *ExtensionFilter {
	return &ExtensionFilter{config: &ExtensionConfig{Extensions: extensions}}
}

func (f *ExtensionFilter) Name() string {
	return "extension_filter"
}

func (f *ExtensionFilter) Description() string {
	return "Keeps files with a supported audio extension"
}

func (f *ExtensionFilter) ValidateConfig(settings map[string]any) error {
	var config ExtensionConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &config,
		TagName: "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	if err := defaults.Set(&config); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	f.config = &config
	zlog.Debug().Msgf("extension filter config: %+v", config)
	return nil
}

func (f *ExtensionFilter) Check(e playlist.Entry) Result {
	if f.config == nil {
		return Accept()
	}

	ext := strings.ToLower(filepath.Ext(e.Name))
	for _, allowed := range f.config.Extensions {
		if ext == strings.ToLower(allowed) {
			return Accept()
		}
	}
	return Reject("unsupported_extension")
}

func init() {
	Register("extension_filter", func() Filter {
		return &ExtensionFilter{}
	})
}
