package discovery

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/inventory/component"
	"github.com/kbukum/inventory/logger"
)

// SourceFactory creates a Source from a Config. providerCfg holds
// backend-specific configuration (e.g. *consul.Config); backends type-assert
// it to their own config type.
type SourceFactory func(cfg Config, providerCfg any, log *logger.Logger) (Source, error)

var (
	factoriesMu     sync.RWMutex
	sourceFactories = make(map[string]SourceFactory)
)

// RegisterSourceFactory makes a backend available under name. Backend
// packages call it from their init function.
func RegisterSourceFactory(name string, f SourceFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	sourceFactories[name] = f
}

// NewSource builds the source selected by cfg.Provider.
func NewSource(cfg Config, providerCfg any, log *logger.Logger) (Source, error) {
	factoriesMu.RLock()
	f, ok := sourceFactories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported discovery provider %q (not registered)", cfg.Provider)
	}
	return f(cfg, providerCfg, log)
}

// Component runs a Source through a Dispatcher for the lifetime of the
// daemon.
type Component struct {
	cfg         Config
	providerCfg any
	dispatcher  *Dispatcher
	log         *logger.Logger

	mu      sync.Mutex
	source  Source
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a discovery Component. providerCfg is handed to the
// backend factory.
func NewComponent(cfg Config, providerCfg any, dispatcher *Dispatcher, log *logger.Logger) *Component {
	if log == nil {
		log = logger.NewNop()
	}
	return &Component{
		cfg:         cfg,
		providerCfg: providerCfg,
		dispatcher:  dispatcher,
		log:         log.WithComponent("discovery"),
	}
}

// WithSource makes the component run src instead of building one from the
// configuration.
func (c *Component) WithSource(src Source) *Component {
	c.source = src
	return c
}

// Source returns the running source, or nil before Start.
func (c *Component) Source() Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

func (c *Component) Name() string { return "discovery" }

// Start builds the source and starts dispatching its events.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg.ApplyDefaults()
	if !c.cfg.Enabled && c.source == nil {
		c.log.Info("Discovery disabled")
		return nil
	}
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("discovery config: %w", err)
	}
	if c.source == nil {
		src, err := NewSource(c.cfg, c.providerCfg, c.log)
		if err != nil {
			return fmt.Errorf("discovery start: %w", err)
		}
		c.source = src
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true

	src, done := c.source, c.done
	go func() {
		defer close(done)
		if err := c.dispatcher.Run(runCtx, src); err != nil {
			c.log.Error("Discovery source failed", logger.Fields(
				logger.FieldSource, src.Name(),
				logger.FieldError, err.Error(),
			))
		}
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()
	return nil
}

// Stop cancels the dispatch loop, closes the source and waits for the loop
// to finish or ctx to end.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	cancel, done, src := c.cancel, c.done, c.source
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	var closeErr error
	if src != nil {
		closeErr = src.Close()
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return closeErr
}

func (c *Component) Health(context.Context) component.Health {
	c.mu.Lock()
	running, src := c.running, c.source
	c.mu.Unlock()

	stats := c.dispatcher.Stats()
	h := component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
		Details: map[string]any{
			"applied":   stats.Applied,
			"rejected":  stats.Rejected,
			"failed":    stats.Failed,
			"providers": c.dispatcher.Identities().Len(),
		},
	}
	switch {
	case src == nil:
		h.Message = "disabled"
	case !running:
		h.Status = component.StatusUnhealthy
		h.Message = "source " + src.Name() + " stopped"
	}
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Type:    "discovery",
		Details: fmt.Sprintf("provider=%s enabled=%t", c.cfg.Provider, c.cfg.Enabled),
	}
}
