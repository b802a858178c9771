package registry

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/kbukum/inventory/errors"
	"github.com/kbukum/inventory/logger"
)

// Option configures a Registry.
type Option func(*Registry)

// WithSink adds a lifecycle sink. Sinks are notified in the order they were
// added.
func WithSink(s LifecycleSink) Option {
	return func(r *Registry) {
		if s != nil {
			r.sinks = append(r.sinks, s)
		}
	}
}

// WithLogger sets the logger used for admission and election events.
func WithLogger(l *logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

type transition struct {
	elected bool
	d       *Descriptor
}

// batch is the notifications of one committed mutation.
type batch struct {
	ctx  context.Context
	ts   []transition
	err  error
	done chan struct{}
}

type deliveringKey struct{}

// Registry holds the candidate table and the active set.
type Registry struct {
	mu       sync.Mutex
	table    map[string][]*Descriptor
	index    map[Identity]string
	active   activeSet
	queue    []*batch // committed batches awaiting delivery, guarded by mu
	draining bool     // a caller is delivering the queue, guarded by mu

	sinks Sinks
	log   *logger.Logger
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		table: make(map[string][]*Descriptor),
		index: make(map[Identity]string),
		log:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("registry")
	return r
}

// Admit adds a validated descriptor and re-runs the election for its name.
// An error with code CALLBACK_FAILED means the descriptor was admitted but a
// lifecycle hook failed.
//
// A lifecycle hook may call Admit, Withdraw or Modify with the context it
// was given. Such a call commits at once and returns nil; its notifications
// are delivered after the current ones and hook failures are only logged.
func (r *Registry) Admit(ctx context.Context, d *Descriptor) error {
	if err := checkDescriptor(d); err != nil {
		return err
	}

	r.mu.Lock()
	ts, err := r.admitLocked(d)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	b, lead := r.enqueueLocked(ctx, ts)
	r.mu.Unlock()

	r.log.Debug("Admitted inventory printer", descriptorFields(d))
	return r.deliver(ctx, b, lead)
}

// Withdraw removes the candidate with the given identity. When it was the
// active printer of its name the name is left without an active printer.
func (r *Registry) Withdraw(ctx context.Context, id Identity) error {
	r.mu.Lock()
	d, ts, err := r.withdrawLocked(id)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	b, lead := r.enqueueLocked(ctx, ts)
	r.mu.Unlock()

	r.log.Debug("Withdrew inventory printer", descriptorFields(d))
	return r.deliver(ctx, b, lead)
}

// Modify replaces the candidate registered under id with d in one critical
// section. Notifications of both halves are delivered as one batch. d may
// keep id or carry a new identity.
func (r *Registry) Modify(ctx context.Context, id Identity, d *Descriptor) error {
	if err := checkDescriptor(d); err != nil {
		return err
	}

	r.mu.Lock()
	if _, ok := r.index[id]; !ok {
		r.mu.Unlock()
		return errors.UnknownIdentity(id)
	}
	if _, dup := r.index[d.Identity]; dup && d.Identity != id {
		r.mu.Unlock()
		return errors.AlreadyExists("printer registration", fmt.Sprint(d.Identity))
	}
	_, withdrawn, _ := r.withdrawLocked(id)
	admitted, _ := r.admitLocked(d)
	b, lead := r.enqueueLocked(ctx, append(withdrawn, admitted...))
	r.mu.Unlock()

	r.log.Debug("Modified inventory printer", descriptorFields(d))
	return r.deliver(ctx, b, lead)
}

// Teardown drops every candidate and clears the active set without
// notifying sinks. The registry stays usable.
func (r *Registry) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.table)
	clear(r.index)
	r.active.clear()
	r.log.Debug("Registry torn down")
}

// AllActive returns the active printers ordered by name.
func (r *Registry) AllActive() []*Descriptor {
	return r.active.snapshot()
}

// ActiveSupporting returns the active printers that support mode, ordered
// by name.
func (r *Registry) ActiveSupporting(mode Mode) []*Descriptor {
	all := r.active.snapshot()
	out := all[:0]
	for _, d := range all {
		if d.Supports(mode) {
			out = append(out, d)
		}
	}
	return out
}

// ActiveByName returns the active printer of name.
func (r *Registry) ActiveByName(name string) (*Descriptor, bool) {
	return r.active.load(name)
}

// Candidates returns every candidate of name in election order.
func (r *Registry) Candidates(name string) []*Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.table[name])
}

// Names returns the sorted names that have at least one candidate.
func (r *Registry) Names() []string {
	r.mu.Lock()
	names := make([]string, 0, len(r.table))
	for name := range r.table {
		names = append(names, name)
	}
	r.mu.Unlock()

	slices.Sort(names)
	return names
}

// Len returns the number of admitted candidates.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.index)
}

func (r *Registry) admitLocked(d *Descriptor) ([]transition, error) {
	if _, ok := r.index[d.Identity]; ok {
		return nil, errors.AlreadyExists("printer registration", fmt.Sprint(d.Identity))
	}

	seq := r.table[d.Name]
	var prev *Descriptor
	if len(seq) > 0 {
		prev = seq[0]
	}
	pos, _ := slices.BinarySearchFunc(seq, d, Compare)
	seq = slices.Insert(seq, pos, d)
	r.table[d.Name] = seq
	r.index[d.Identity] = d.Name

	head := seq[0]
	switch {
	case prev == nil:
		r.active.store(head)
		return []transition{{elected: true, d: head}}, nil
	case head != prev:
		var ts []transition
		if cur, ok := r.active.load(d.Name); ok && cur == prev {
			ts = append(ts, transition{d: prev})
		}
		r.active.store(head)
		return append(ts, transition{elected: true, d: head}), nil
	}
	return nil, nil
}

func (r *Registry) withdrawLocked(id Identity) (*Descriptor, []transition, error) {
	name, ok := r.index[id]
	if !ok {
		return nil, nil, errors.UnknownIdentity(id)
	}

	seq := r.table[name]
	i := slices.IndexFunc(seq, func(c *Descriptor) bool { return c.Identity == id })
	d := seq[i]
	seq = slices.Delete(seq, i, i+1)
	if len(seq) == 0 {
		delete(r.table, name)
	} else {
		r.table[name] = seq
	}
	delete(r.index, id)

	if cur, ok := r.active.load(name); ok && cur.Identity == id {
		r.active.delete(name)
		return d, []transition{{d: d}}, nil
	}
	return d, nil, nil
}

// enqueueLocked queues ts for delivery in commit order. lead reports that
// the caller must drain the queue. Callers hold mu.
func (r *Registry) enqueueLocked(ctx context.Context, ts []transition) (*batch, bool) {
	if len(ts) == 0 {
		return nil, false
	}
	b := &batch{ctx: ctx, ts: ts, done: make(chan struct{})}
	r.queue = append(r.queue, b)
	if r.draining {
		return b, false
	}
	r.draining = true
	return b, true
}

// deliver returns the hook errors of b once it has been delivered. A call
// made from a hook of this registry does not wait, since its batch runs
// after the one being delivered.
func (r *Registry) deliver(ctx context.Context, b *batch, lead bool) error {
	if b == nil {
		return nil
	}
	if lead {
		r.drain()
	} else if ctx.Value(deliveringKey{}) == r {
		return nil
	}
	<-b.done
	return b.err
}

// drain delivers queued batches one at a time until the queue is empty.
func (r *Registry) drain() {
	for {
		r.mu.Lock()
		if len(r.queue) == 0 {
			r.draining = false
			r.mu.Unlock()
			return
		}
		b := r.queue[0]
		r.queue[0] = nil
		r.queue = r.queue[1:]
		r.mu.Unlock()

		b.err = r.notify(context.WithValue(b.ctx, deliveringKey{}, r), b.ts)
		close(b.done)
	}
}

func (r *Registry) notify(ctx context.Context, ts []transition) error {
	var errs []error
	var names []string
	for _, t := range ts {
		var err error
		if t.elected {
			r.log.Info("Elected inventory printer", descriptorFields(t.d))
			err = r.sinks.OnElected(ctx, t.d)
		} else {
			r.log.Info("Demoted inventory printer", descriptorFields(t.d))
			err = r.sinks.OnDemoted(ctx, t.d)
		}
		if err != nil {
			r.log.Error("Lifecycle callback failed", logger.Fields(
				logger.FieldPrinter, t.d.Name,
				logger.FieldIdentity, uint64(t.d.Identity),
				logger.FieldError, err.Error(),
			))
			errs = append(errs, err)
			if !slices.Contains(names, t.d.Name) {
				names = append(names, t.d.Name)
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.CallbackFailed(strings.Join(names, ","), stderrors.Join(errs...))
}

func descriptorFields(d *Descriptor) map[string]interface{} {
	if d == nil {
		return nil
	}
	modes := make([]string, len(d.Capabilities))
	for i, m := range d.Capabilities {
		modes[i] = string(m)
	}
	return logger.Fields(
		logger.FieldPrinter, d.Name,
		logger.FieldIdentity, uint64(d.Identity),
		logger.FieldRank, d.Rank,
		logger.FieldModes, modes,
	)
}
