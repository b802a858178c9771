package main

import (
	"fmt"

	"github.com/kbukum/inventory/config"
	"github.com/kbukum/inventory/discovery"
	"github.com/kbukum/inventory/discovery/consul"
	"github.com/kbukum/inventory/discovery/kafka"
	"github.com/kbukum/inventory/httpclient"
	"github.com/kbukum/inventory/observability"
	"github.com/kbukum/inventory/server"
)

// Config is the inventoryd configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Discovery     DiscoveryConfig      `yaml:"discovery" mapstructure:"discovery"`
	Remote        httpclient.Config    `yaml:"remote" mapstructure:"remote"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// DiscoveryConfig adds the backend sections to discovery.Config.
type DiscoveryConfig struct {
	discovery.Config `yaml:",inline" mapstructure:",squash"`

	Consul consul.Config `yaml:"consul" mapstructure:"consul"`
	Kafka  kafka.Config  `yaml:"kafka" mapstructure:"kafka"`
}

// ProviderConfig returns the section of the selected backend.
func (d *DiscoveryConfig) ProviderConfig() any {
	switch d.Provider {
	case "consul":
		return &d.Consul
	case "kafka":
		return &d.Kafka
	default:
		return nil
	}
}

// ApplyDefaults fills zero-valued fields of every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Discovery.Config.ApplyDefaults()
	switch c.Discovery.Provider {
	case "consul":
		c.Discovery.Consul.ApplyDefaults()
	case "kafka":
		c.Discovery.Kafka.ApplyDefaults()
	}
	if c.Remote.Retry == nil {
		c.Remote.Retry = httpclient.DefaultRetryConfig()
	}
	c.Remote.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section. Backend sections are only checked when
// their backend is selected.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Discovery.Config.Validate(); err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	if c.Discovery.Enabled {
		switch c.Discovery.Provider {
		case "consul":
			if err := c.Discovery.Consul.Validate(); err != nil {
				return fmt.Errorf("discovery.consul: %w", err)
			}
		case "kafka":
			if err := c.Discovery.Kafka.Validate(); err != nil {
				return fmt.Errorf("discovery.kafka: %w", err)
			}
		}
	}
	if err := c.Remote.Validate(); err != nil {
		return fmt.Errorf("remote: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	return nil
}
