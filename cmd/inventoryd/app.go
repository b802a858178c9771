package main

import (
	"fmt"

	"github.com/kbukum/inventory/bootstrap"
	"github.com/kbukum/inventory/component"
	"github.com/kbukum/inventory/discovery"
	"github.com/kbukum/inventory/httpclient"
	"github.com/kbukum/inventory/inventory"
	"github.com/kbukum/inventory/observability"
	"github.com/kbukum/inventory/printers"
	"github.com/kbukum/inventory/registry"
	"github.com/kbukum/inventory/server"

	_ "github.com/kbukum/inventory/discovery/consul"
	_ "github.com/kbukum/inventory/discovery/kafka"
	_ "github.com/kbukum/inventory/discovery/static"
)

const instrumentationName = "github.com/kbukum/inventory"

// daemon holds the parts of a built application that tests reach into.
type daemon struct {
	app      *bootstrap.App[*Config]
	registry *registry.Registry
	server   *server.Server
}

// buildApp wires the components in start order: telemetry, registry,
// discovery, HTTP server. They stop in reverse.
func buildApp(cfg *Config, opts ...bootstrap.Option) (*daemon, error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}
	log := app.Logger

	telemetry := observability.NewComponent(cfg.Observability, observability.Service{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	}, log)

	metrics, err := registry.NewMetrics(observability.Meter(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("registry metrics: %w", err)
	}
	reg := registry.New(registry.WithLogger(log), registry.WithSink(metrics))
	metrics.ObserveActive(reg)

	client, err := httpclient.New(cfg.Remote)
	if err != nil {
		return nil, fmt.Errorf("remote client: %w", err)
	}
	dispatcher := discovery.NewDispatcher(reg,
		discovery.WithHandleFactory(printers.NewHandleFactory(cfg.Name, client)),
		discovery.WithRejectionRecorder(metrics),
		discovery.WithTracer(observability.Tracer(instrumentationName)),
		discovery.WithDispatcherLogger(log),
	)

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, app.Components.HealthAll)
	inventory.NewHandler(reg, log).Register(srv.GinEngine())

	for _, c := range []component.Component{
		telemetry,
		registry.NewComponent(reg),
		discovery.NewComponent(cfg.Discovery.Config, cfg.Discovery.ProviderConfig(), dispatcher, log),
		server.NewComponent(srv),
	} {
		if err := app.Add(c); err != nil {
			return nil, err
		}
	}

	return &daemon{app: app, registry: reg, server: srv}, nil
}
