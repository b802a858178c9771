package observability

import (
	"fmt"
	"time"
)

// Config holds the telemetry export settings.
type Config struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"` // OTLP/HTTP host:port
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the trace sampling ratio. Zero means the default of 1;
	// a negative value disables sampling.
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = 15 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.SampleRate > 1 {
		return fmt.Errorf("observability.sample_rate must not exceed 1 (got: %g)", c.SampleRate)
	}
	if c.MetricInterval < 0 {
		return fmt.Errorf("observability.metric_interval must be non-negative (got: %s)", c.MetricInterval)
	}
	return nil
}

// TracerConfig returns the tracer settings for a service.
func (c Config) TracerConfig(service Service) TracerConfig {
	return TracerConfig{
		Service:    service,
		Endpoint:   c.Endpoint,
		Insecure:   c.Insecure,
		SampleRate: c.SampleRate,
	}
}

// MeterConfig returns the meter settings for a service.
func (c Config) MeterConfig(service Service) MeterConfig {
	return MeterConfig{
		Service:  service,
		Endpoint: c.Endpoint,
		Insecure: c.Insecure,
		Interval: c.MetricInterval,
	}
}
