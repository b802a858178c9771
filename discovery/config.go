package discovery

import (
	"fmt"
	"strings"

	"github.com/kbukum/inventory/registry"
)

// Config selects and configures the discovery source.
type Config struct {
	// Enabled controls whether the discovery component runs a source.
	Enabled bool `mapstructure:"enabled"`

	// Provider selects the source backend: "static", "consul" or "kafka".
	Provider string `mapstructure:"provider"`

	// Static lists providers known at startup. The static source reports them
	// as added when it starts.
	Static []StaticPrinter `mapstructure:"static"`
}

// StaticPrinter describes a provider declared in configuration.
type StaticPrinter struct {
	Key      string   `mapstructure:"key"`
	Name     string   `mapstructure:"name"`
	Title    string   `mapstructure:"title"`
	Formats  []string `mapstructure:"formats"`
	Ranking  int      `mapstructure:"ranking"`
	Kind     string   `mapstructure:"kind"`
	Endpoint string   `mapstructure:"endpoint"`
}

// Metadata converts the declaration into a registry metadata bag.
func (p StaticPrinter) Metadata() registry.Metadata {
	meta := registry.Metadata{
		registry.KeyName:    p.Name,
		registry.KeyTitle:   p.Title,
		registry.KeyFormat:  strings.Join(p.Formats, ","),
		registry.KeyRanking: p.Ranking,
	}
	if p.Kind != "" {
		meta[KeyKind] = p.Kind
	}
	return meta
}

// ApplyDefaults fills zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "static"
	}
	for i := range c.Static {
		if c.Static[i].Key == "" {
			c.Static[i].Key = c.Static[i].Name
		}
	}
}

// Validate checks that required fields are present and consistent.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Provider {
	case "static", "consul", "kafka":
	default:
		return fmt.Errorf("unsupported discovery provider %q", c.Provider)
	}
	seen := make(map[string]bool, len(c.Static))
	for _, p := range c.Static {
		if p.Key == "" {
			return fmt.Errorf("static printer without key or name")
		}
		if seen[p.Key] {
			return fmt.Errorf("duplicate static printer key %q", p.Key)
		}
		seen[p.Key] = true
	}
	return nil
}
