package registry

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics is a LifecycleSink that counts elections and demotions.
// Rejections are recorded by the discovery layer through RecordRejection.
// The inventory.active gauge reads the registry passed to ObserveActive.
type Metrics struct {
	elections  metric.Int64Counter
	demotions  metric.Int64Counter
	rejections metric.Int64Counter
	active     metric.Int64ObservableGauge
	observed   atomic.Pointer[Registry]
}

// NewMetrics creates the registry instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	elections, err := meter.Int64Counter(
		"inventory.elections",
		metric.WithDescription("Number of printers elected active"),
	)
	if err != nil {
		return nil, err
	}

	demotions, err := meter.Int64Counter(
		"inventory.demotions",
		metric.WithDescription("Number of active printers demoted"),
	)
	if err != nil {
		return nil, err
	}

	rejections, err := meter.Int64Counter(
		"inventory.rejections",
		metric.WithDescription("Number of registrations rejected by validation"),
	)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		elections:  elections,
		demotions:  demotions,
		rejections: rejections,
	}
	m.active, err = meter.Int64ObservableGauge(
		"inventory.active",
		metric.WithDescription("Number of active printers"),
		metric.WithInt64Callback(m.observeActive),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveActive makes the inventory.active gauge report the active printers
// of r.
func (m *Metrics) ObserveActive(r *Registry) {
	m.observed.Store(r)
}

func (m *Metrics) observeActive(_ context.Context, o metric.Int64Observer) error {
	if r := m.observed.Load(); r != nil {
		o.Observe(int64(r.active.len()))
	}
	return nil
}

func (m *Metrics) OnElected(ctx context.Context, d *Descriptor) error {
	attrs := metric.WithAttributes(attribute.String("printer", d.Name))
	m.elections.Add(ctx, 1, attrs)
	return nil
}

func (m *Metrics) OnDemoted(ctx context.Context, d *Descriptor) error {
	attrs := metric.WithAttributes(attribute.String("printer", d.Name))
	m.demotions.Add(ctx, 1, attrs)
	return nil
}

// RecordRejection counts a registration that failed validation.
func (m *Metrics) RecordRejection(ctx context.Context, source, reason string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("reason", reason),
	))
}
