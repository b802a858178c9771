package discovery_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/kbukum/inventory/component"
	"github.com/kbukum/inventory/discovery"
	"github.com/kbukum/inventory/discovery/static"
	"github.com/kbukum/inventory/discovery/testutil"
	"github.com/kbukum/inventory/registry"
)

var nop = registry.PrinterFunc(func(context.Context, registry.Mode, io.Writer) error { return nil })

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestComponent_RunsInjectedSource(t *testing.T) {
	reg := registry.New()
	d := discovery.NewDispatcher(reg)
	src := testutil.NewSource("test")
	c := discovery.NewComponent(discovery.Config{}, nil, d, nil).WithSource(src)

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	src.Emit(discovery.Event{
		Type: discovery.Added,
		Key:  "a",
		Metadata: registry.Metadata{
			registry.KeyName:   "bundles",
			registry.KeyTitle:  "Bundles",
			registry.KeyFormat: "text",
		},
		Handle: nop,
	})
	eventually(t, func() bool {
		_, ok := reg.ActiveByName("bundles")
		return ok
	})

	h := c.Health(ctx)
	if h.Status != component.StatusHealthy || h.Details["providers"] != 1 {
		t.Errorf("unexpected health %+v", h)
	}

	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected stopped source to be unhealthy, got %+v", h)
	}
}

func TestComponent_StaticFromConfig(t *testing.T) {
	reg := registry.New()
	d := discovery.NewDispatcher(reg, discovery.WithHandleFactory(func(discovery.Event) (registry.Printer, error) {
		return nop, nil
	}))
	cfg := discovery.Config{
		Enabled: true,
		Static: []discovery.StaticPrinter{
			{Name: "runtime", Title: "Runtime", Formats: []string{"text"}},
			{Name: "build", Title: "Build", Formats: []string{"json"}, Ranking: 1},
		},
	}
	c := discovery.NewComponent(cfg, nil, d, nil)

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer c.Stop(ctx)

	eventually(t, func() bool { return len(reg.AllActive()) == 2 })

	src, ok := c.Source().(*static.Source)
	if !ok {
		t.Fatalf("expected static source, got %T", c.Source())
	}
	if err := src.Deregister("runtime"); err != nil {
		t.Fatalf("Deregister failed: %v", err)
	}
	eventually(t, func() bool { return len(reg.AllActive()) == 1 })
}

func TestComponent_DisabledDoesNothing(t *testing.T) {
	c := discovery.NewComponent(discovery.Config{}, nil, discovery.NewDispatcher(registry.New()), nil)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if c.Source() != nil {
		t.Error("expected no source when disabled")
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy || h.Message != "disabled" {
		t.Errorf("unexpected health %+v", h)
	}
	if err := c.Stop(ctx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestComponent_UnknownProvider(t *testing.T) {
	cfg := discovery.Config{Enabled: true, Provider: "kafka"}
	c := discovery.NewComponent(cfg, nil, discovery.NewDispatcher(registry.New()), nil)
	// The kafka backend is not imported here, so its factory is missing.
	if err := c.Start(context.Background()); err == nil {
		t.Error("expected error for unregistered provider")
	}
}
