package consul

import (
	"fmt"
	"time"

	"github.com/kbukum/inventory/security"
)

// Config holds Consul connection settings and the services to watch.
type Config struct {
	// Address is the Consul agent address (default: localhost:8500).
	Address string `yaml:"address" mapstructure:"address"`

	// Scheme is the URI scheme (http/https).
	Scheme string `yaml:"scheme" mapstructure:"scheme"`

	// Datacenter to use.
	Datacenter string `yaml:"datacenter" mapstructure:"datacenter"`

	// Token is the ACL token for authentication.
	Token string `yaml:"token" mapstructure:"token"`

	// Namespace for Consul Enterprise.
	Namespace string `yaml:"namespace" mapstructure:"namespace"`

	// Services are the catalog service names whose instances are printers.
	Services []string `yaml:"services" mapstructure:"services"`

	// Tag restricts the watch to instances carrying this tag.
	Tag string `yaml:"tag" mapstructure:"tag"`

	// PassingOnly drops instances with failing health checks.
	PassingOnly bool `yaml:"passing_only" mapstructure:"passing_only"`

	// WaitTime bounds a single blocking query.
	WaitTime time.Duration `yaml:"wait_time" mapstructure:"wait_time"`

	// RetryInterval is the first pause after a failed query. Repeated
	// failures double it up to 30s.
	RetryInterval time.Duration `yaml:"retry_interval" mapstructure:"retry_interval"`

	// TLS configures the agent connection. It requires the https scheme.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults sets sensible defaults for Config.
func (c *Config) ApplyDefaults() {
	if c.Address == "" {
		c.Address = "localhost:8500"
	}
	if c.Scheme == "" {
		c.Scheme = "http"
	}
	if len(c.Services) == 0 {
		c.Services = []string{"inventory-printer"}
	}
	if c.WaitTime == 0 {
		c.WaitTime = 30 * time.Second
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = time.Second
	}
}

// Validate checks if the Consul configuration is valid.
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("consul address is required")
	}
	if c.Scheme != "http" && c.Scheme != "https" {
		return fmt.Errorf("consul scheme must be 'http' or 'https', got '%s'", c.Scheme)
	}
	if c.TLS.IsEnabled() && c.Scheme != "https" {
		return fmt.Errorf("TLS enabled but scheme is not https")
	}
	if err := c.TLS.Validate(); err != nil {
		return err
	}
	if len(c.Services) == 0 {
		return fmt.Errorf("at least one consul service to watch is required")
	}
	if c.WaitTime < 0 || c.RetryInterval < 0 {
		return fmt.Errorf("wait_time and retry_interval must be non-negative")
	}
	return nil
}
