package registry

import (
	"context"
	"errors"
)

// LifecycleSink observes changes of the active set.
//
// OnElected runs when a descriptor becomes the active printer of its name and
// OnDemoted when it stops being active. Hooks run on the goroutine of the
// mutating call, after the table lock is released.
type LifecycleSink interface {
	OnElected(ctx context.Context, d *Descriptor) error
	OnDemoted(ctx context.Context, d *Descriptor) error
}

// SinkFuncs adapts functions to LifecycleSink. Nil functions are skipped.
type SinkFuncs struct {
	Elected func(ctx context.Context, d *Descriptor) error
	Demoted func(ctx context.Context, d *Descriptor) error
}

func (s SinkFuncs) OnElected(ctx context.Context, d *Descriptor) error {
	if s.Elected == nil {
		return nil
	}
	return s.Elected(ctx, d)
}

func (s SinkFuncs) OnDemoted(ctx context.Context, d *Descriptor) error {
	if s.Demoted == nil {
		return nil
	}
	return s.Demoted(ctx, d)
}

// Sinks fans a notification out to every sink in order. All sinks run even
// when one fails; failures are joined.
type Sinks []LifecycleSink

func (s Sinks) OnElected(ctx context.Context, d *Descriptor) error {
	var errs []error
	for _, sink := range s {
		if err := sink.OnElected(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s Sinks) OnDemoted(ctx context.Context, d *Descriptor) error {
	var errs []error
	for _, sink := range s {
		if err := sink.OnDemoted(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopSink ignores every notification.
type NopSink struct{}

func (NopSink) OnElected(context.Context, *Descriptor) error { return nil }
func (NopSink) OnDemoted(context.Context, *Descriptor) error { return nil }
