package registry

import (
	"context"
	"fmt"

	"github.com/kbukum/inventory/component"
)

// Component adapts a Registry to the daemon lifecycle. Stopping it tears the
// registry down without notifying sinks.
type Component struct {
	reg *Registry
}

var _ component.Component = (*Component)(nil)

// NewComponent wraps reg.
func NewComponent(reg *Registry) *Component {
	return &Component{reg: reg}
}

// Registry returns the wrapped registry.
func (c *Component) Registry() *Registry { return c.reg }

func (c *Component) Name() string { return "registry" }

func (c *Component) Start(context.Context) error { return nil }

func (c *Component) Stop(context.Context) error {
	c.reg.Teardown()
	return nil
}

func (c *Component) Health(context.Context) component.Health {
	active := len(c.reg.AllActive())
	return component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
		Details: map[string]any{
			"active":     active,
			"candidates": c.reg.Len(),
			"names":      len(c.reg.Names()),
		},
	}
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Type:    "registry",
		Details: fmt.Sprintf("sinks=%d", len(c.reg.sinks)),
	}
}
