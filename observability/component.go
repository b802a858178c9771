package observability

import (
	"context"
	"errors"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/inventory/component"
	"github.com/kbukum/inventory/logger"
)

const componentName = "observability"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component installs the tracer and meter providers on Start and flushes
// them on Stop. A disabled Component does nothing.
type Component struct {
	cfg     Config
	service Service
	log     *logger.Logger

	mu sync.Mutex
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// NewComponent creates the telemetry component.
func NewComponent(cfg Config, service Service, log *logger.Logger) *Component {
	if log == nil {
		log = logger.NewNop()
	}
	return &Component{cfg: cfg, service: service, log: log.WithComponent(componentName)}
}

// Name returns the component name.
func (c *Component) Name() string { return componentName }

// Start initializes the providers when telemetry is enabled.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		return nil
	}

	tp, err := InitTracer(ctx, c.cfg.TracerConfig(c.service))
	if err != nil {
		return err
	}
	mp, err := InitMeter(ctx, c.cfg.MeterConfig(c.service))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}

	c.mu.Lock()
	c.tp, c.mp = tp, mp
	c.mu.Unlock()

	c.log.Info("Telemetry initialized", logger.Fields(
		"endpoint", c.cfg.Endpoint,
		"sample_rate", c.cfg.SampleRate,
		"metric_interval", c.cfg.MetricInterval.String(),
	))
	return nil
}

// Stop flushes and shuts down the providers.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	tp, mp := c.tp, c.mp
	c.tp, c.mp = nil, nil
	c.mu.Unlock()

	var errs []error
	if tp != nil {
		errs = append(errs, tp.Shutdown(ctx))
	}
	if mp != nil {
		errs = append(errs, mp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// Health reports whether telemetry is exporting.
func (c *Component) Health(context.Context) component.Health {
	c.mu.Lock()
	running := c.tp != nil
	c.mu.Unlock()

	h := component.Health{
		Name:    componentName,
		Status:  component.StatusHealthy,
		Details: map[string]any{"enabled": c.cfg.Enabled},
	}
	switch {
	case !c.cfg.Enabled:
		h.Message = "disabled"
	case !running:
		h.Status = component.StatusDegraded
		h.Message = "not exporting"
	default:
		h.Details["endpoint"] = c.cfg.Endpoint
	}
	return h
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	if !c.cfg.Enabled {
		return component.Description{Type: "telemetry", Details: "disabled"}
	}
	return component.Description{Type: "telemetry", Details: "otlp/http " + c.cfg.Endpoint}
}
