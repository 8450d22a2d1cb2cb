package filter

import (
	"sort"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/buttonbox/internal/domain/playlist"
)

// Config is the per-filter configuration.
type Config struct {
	Enabled  bool
	Settings map[string]any
}

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// DefaultChain rejects directories, hidden files and non-audio extensions.
func DefaultChain() *Chain {
	c := NewChain()
	c.Add(&DirectoryFilter{})
	c.Add(&HiddenFilter{})
	c.Add(NewExtensionFilter(DefaultExtensions))
	return c
}

// NewChainFromConfig builds a chain from the enabled filters, in name order.
// The directory filter is always first. An empty configuration yields DefaultChain.
func NewChainFromConfig(cfg map[string]Config) (*Chain, error) {
	if len(cfg) == 0 {
		return DefaultChain(), nil
	}

	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	sort.Strings(names)

	c := NewChain()
	c.Add(&DirectoryFilter{})
	for _, name := range names {
		fc := cfg[name]
		if !fc.Enabled || name == directoryFilterName {
			continue
		}

		factory, ok := registry[name]
		if !ok {
			return nil, errors.Newf("unknown filter: %s", name)
		}
		f := factory()
		if err := f.ValidateConfig(fc.Settings); err != nil {
			return nil, errors.Wrapf(err, "filter %s", name)
		}
		c.Add(f)
		zlog.Debug().Msgf("filter: enabled: name=%s", name)
	}
	return c, nil
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence.
// Returns immediately if any filter rejects the entry.
func (c *Chain) Execute(e playlist.Entry) Result {
	for _, f := range c.filters {
		result := f.Check(e)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Apply returns the accepted entries, preserving order.
func (c *Chain) Apply(entries []playlist.Entry) []playlist.Entry {
	accepted := make([]playlist.Entry, 0, len(entries))
	for _, e := range entries {
		if result := c.Execute(e); !result.Accepted {
			zlog.Debug().Msgf("filter: skipping entry: name=%s code=%s", e.Name, result.Code)
			continue
		}
		accepted = append(accepted, e)
	}
	return accepted
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
