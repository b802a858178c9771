package discovery

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/inventory/errors"
	"github.com/kbukum/inventory/logger"
	"github.com/kbukum/inventory/registry"
)

// HandleFactory builds the printer handle of a provider from its event.
type HandleFactory func(ev Event) (registry.Printer, error)

// RejectionRecorder counts registrations that were ignored.
// *registry.Metrics implements it.
type RejectionRecorder interface {
	RecordRejection(ctx context.Context, source, reason string)
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithHandleFactory sets the factory used for events that carry no handle.
func WithHandleFactory(f HandleFactory) DispatcherOption {
	return func(d *Dispatcher) { d.factory = f }
}

// WithRejectionRecorder sets where ignored registrations are counted.
func WithRejectionRecorder(r RejectionRecorder) DispatcherOption {
	return func(d *Dispatcher) { d.rejections = r }
}

// WithTracer sets the tracer used for per-event spans.
func WithTracer(t trace.Tracer) DispatcherOption {
	return func(d *Dispatcher) { d.tracer = t }
}

// WithDispatcherLogger sets the dispatcher logger.
func WithDispatcherLogger(l *logger.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// Stats counts dispatcher activity.
type Stats struct {
	Applied  int64 `json:"applied"`
	Rejected int64 `json:"rejected"`
	Failed   int64 `json:"failed"`
}

// Dispatcher applies discovery events to a registry.
type Dispatcher struct {
	reg        *registry.Registry
	ids        *Identities
	factory    HandleFactory
	rejections RejectionRecorder
	tracer     trace.Tracer
	log        *logger.Logger

	keysMu sync.Mutex
	keys   map[string]*keyLock

	applied  atomic.Int64
	rejected atomic.Int64
	failed   atomic.Int64
}

// NewDispatcher creates a Dispatcher for reg.
func NewDispatcher(reg *registry.Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		reg:    reg,
		ids:    NewIdentities(),
		keys:   make(map[string]*keyLock),
		tracer: otel.Tracer("github.com/kbukum/inventory/discovery"),
		log:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.WithComponent("discovery")
	return d
}

// Identities returns the key to identity bindings of the dispatcher.
func (d *Dispatcher) Identities() *Identities { return d.ids }

// Stats returns a snapshot of the dispatcher counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Applied:  d.applied.Load(),
		Rejected: d.rejected.Load(),
		Failed:   d.failed.Load(),
	}
}

// Run applies every event of src until ctx ends or the source closes its
// channel. Failures of single events are logged and do not stop the loop.
func (d *Dispatcher) Run(ctx context.Context, src Source) error {
	events, err := src.Events(ctx)
	if err != nil {
		return err
	}
	d.log.Info("Watching discovery source", logger.Fields(logger.FieldSource, src.Name()))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Source == "" {
				ev.Source = src.Name()
			}
			if err := d.Apply(ctx, ev); err != nil && !registry.IsValidation(err) {
				d.log.Warn("Discovery event failed", eventFields(ev, err))
			}
		}
	}
}

// Apply turns one event into a registry mutation.
//
// Added admits a new registration. Modified replaces a known registration,
// withdraws it when the new metadata is invalid, and admits it when the key
// was previously ignored. Removed withdraws the registration of the key.
func (d *Dispatcher) Apply(ctx context.Context, ev Event) error {
	ctx, span := d.tracer.Start(ctx, "inventory.discovery."+string(ev.Type),
		trace.WithAttributes(
			attribute.String("inventory.source", ev.Source),
			attribute.String("inventory.key", ev.Key),
		))
	defer span.End()

	err := d.apply(ctx, ev)
	switch {
	case err == nil:
		d.applied.Add(1)
	case registry.IsValidation(err):
		d.rejected.Add(1)
	default:
		d.failed.Add(1)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (d *Dispatcher) apply(ctx context.Context, ev Event) error {
	if err := ev.Check(); err != nil {
		appErr := errors.InvalidInput("event", err.Error())
		d.reject(ctx, ev, appErr)
		return appErr
	}
	key := ev.Source + "/" + ev.Key
	unlock := d.lock(key)
	defer unlock()

	switch ev.Type {
	case Added, Modified:
		return d.upsert(ctx, key, ev)
	default:
		id, known := d.ids.Lookup(key)
		if !known {
			d.log.Debug("Removal of unregistered provider", eventFields(ev, nil))
			return nil
		}
		d.ids.Forget(key)
		return d.reg.Withdraw(ctx, id)
	}
}

func (d *Dispatcher) upsert(ctx context.Context, key string, ev Event) error {
	oldID, known := d.ids.Lookup(key)
	id := oldID
	if !known {
		id = d.ids.Next()
	}

	desc, err := d.build(id, ev)
	if err != nil {
		d.reject(ctx, ev, err)
		if !known {
			return err
		}
		d.ids.Forget(key)
		if werr := d.reg.Withdraw(ctx, oldID); werr != nil {
			return stderrors.Join(err, werr)
		}
		return err
	}

	if !known {
		d.ids.Bind(key, id)
		return d.reg.Admit(ctx, desc)
	}
	return d.reg.Modify(ctx, oldID, desc)
}

// keyLock serializes the events of one source key.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// lock holds key until the returned func is called. Entries are dropped
// once no event of the key is in flight.
func (d *Dispatcher) lock(key string) func() {
	d.keysMu.Lock()
	l, ok := d.keys[key]
	if !ok {
		l = &keyLock{}
		d.keys[key] = l
	}
	l.refs++
	d.keysMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		d.keysMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(d.keys, key)
		}
		d.keysMu.Unlock()
	}
}

func (d *Dispatcher) build(id registry.Identity, ev Event) (*registry.Descriptor, error) {
	handle := ev.Handle
	if handle == nil && d.factory != nil {
		h, err := d.factory(ev)
		if err != nil {
			return nil, errors.InvalidInput("handle", err.Error()).WithCause(err)
		}
		handle = h
	}
	return registry.Validate(id, ev.Metadata, handle)
}

// reject reports an ignored registration.
func (d *Dispatcher) reject(ctx context.Context, ev Event, err error) {
	d.log.Warn("Ignoring inventory printer", eventFields(ev, err))
	if d.rejections == nil {
		return
	}
	reason := "invalid"
	if appErr, ok := errors.AsAppError(err); ok {
		reason = string(appErr.Code)
	}
	d.rejections.RecordRejection(ctx, ev.Source, reason)
}

func eventFields(ev Event, err error) map[string]interface{} {
	fields := logger.Fields(
		logger.FieldSource, ev.Source,
		logger.FieldKey, ev.Key,
		logger.FieldEvent, string(ev.Type),
	)
	if err != nil {
		fields[logger.FieldError] = err.Error()
	}
	return fields
}
