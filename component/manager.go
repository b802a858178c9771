package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/inventory/logger"
)

// DefaultStopTimeout bounds the Stop call of a single component.
const DefaultStopTimeout = 10 * time.Second

type entry struct {
	component Component
	started   bool
}

// Manager owns component lifecycle with deterministic ordering.
// Components are started in the order they are added and stopped in reverse.
type Manager struct {
	mu      sync.Mutex
	entries []*entry
	lookup  map[string]*entry
	log     *logger.Logger
}

// NewManager creates an empty Manager.
func NewManager(log *logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{
		lookup: make(map[string]*entry),
		log:    log.WithComponent("lifecycle"),
	}
}

// Add appends a component. Names must be unique.
func (m *Manager) Add(c Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := c.Name()
	if _, exists := m.lookup[name]; exists {
		return fmt.Errorf("component %s already added", name)
	}
	e := &entry{component: c}
	m.entries = append(m.entries, e)
	m.lookup[name] = e
	return nil
}

// StartAll starts every component in order and stops at the first failure.
// Components started before the failure stay started; call StopAll to
// release them.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.started {
			continue
		}
		name := e.component.Name()
		if err := e.component.Start(ctx); err != nil {
			m.log.Error("Component start failed", logger.Fields("name", name, logger.FieldError, err.Error()))
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		e.started = true

		fields := logger.Fields("name", name)
		if d, ok := e.component.(Describable); ok {
			desc := d.Describe()
			fields["type"] = desc.Type
			fields["details"] = desc.Details
		}
		m.log.Info("Component started", fields)
	}
	return nil
}

// StopAll stops started components in reverse order. Every component is
// given the chance to stop; failures are joined.
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if !e.started {
			continue
		}
		name := e.component.Name()

		stopCtx, cancel := context.WithTimeout(ctx, DefaultStopTimeout)
		if err := e.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			m.log.Error("Component stop failed", logger.Fields("name", name, logger.FieldError, err.Error()))
		} else {
			m.log.Info("Component stopped", logger.Fields("name", name))
		}
		cancel()
		e.started = false
	}
	return errors.Join(errs...)
}

// HealthAll returns the health of every component in order.
func (m *Manager) HealthAll(ctx context.Context) []Health {
	m.mu.Lock()
	components := make([]Component, 0, len(m.entries))
	for _, e := range m.entries {
		components = append(components, e.component)
	}
	m.mu.Unlock()

	results := make([]Health, 0, len(components))
	for _, c := range components {
		results = append(results, c.Health(ctx))
	}
	return results
}

// Get returns a component by name, or nil if none was added.
func (m *Manager) Get(name string) Component {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.lookup[name]; ok {
		return e.component
	}
	return nil
}

// Overall folds component health into one status: unhealthy wins over
// degraded, which wins over healthy.
func Overall(results []Health) HealthStatus {
	status := StatusHealthy
	for _, h := range results {
		switch h.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
