package server

import (
	"fmt"

	"github.com/kbukum/inventory/validation"
)

// Config is the listener of the inventory API. Timeouts are in seconds.
type Config struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// ApplyDefaults listens on 8080. Zip reports are written in one response, so
// the write timeout is four times the read timeout.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 4 * c.ReadTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
}

// Validate rejects a port outside 0-65535 and negative timeouts.
func (c *Config) Validate() error {
	v := validation.New().
		Custom(c.Port >= 0 && c.Port <= 65535, "port", fmt.Sprintf("must be between 0 and 65535 (got: %d)", c.Port)).
		Custom(c.ReadTimeout >= 0, "read_timeout", "must not be negative").
		Custom(c.WriteTimeout >= 0, "write_timeout", "must not be negative").
		Custom(c.IdleTimeout >= 0, "idle_timeout", "must not be negative")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
