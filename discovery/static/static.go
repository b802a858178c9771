// Package static provides a discovery source backed by configuration and
// in-process registration calls.
package static

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/inventory/discovery"
	"github.com/kbukum/inventory/errors"
	"github.com/kbukum/inventory/logger"
	"github.com/kbukum/inventory/registry"
)

func init() {
	discovery.RegisterSourceFactory("static", func(cfg discovery.Config, _ any, log *logger.Logger) (discovery.Source, error) {
		return NewSource(cfg.Static, log)
	})
}

// Source reports configured providers as added on start and then relays
// Register, Update and Deregister calls. Events are queued without bound so
// registration never blocks on the consumer.
type Source struct {
	mu         sync.Mutex
	known      map[string]bool
	pending    []discovery.Event
	wake       chan struct{}
	closed     chan struct{}
	closeOnce  sync.Once
	subscribed bool
	log        *logger.Logger
}

// NewSource creates a Source pre-populated from static configuration.
func NewSource(printers []discovery.StaticPrinter, log *logger.Logger) (*Source, error) {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Source{
		known:  make(map[string]bool),
		wake:   make(chan struct{}, 1),
		closed: make(chan struct{}),
		log:    log.WithComponent("discovery.static"),
	}
	for _, p := range printers {
		if err := s.Register(p.Key, p.Metadata(), p.Endpoint); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Source) Name() string { return "static" }

// Register announces a new provider.
func (s *Source) Register(key string, meta registry.Metadata, endpoint string) error {
	return s.emit(discovery.Event{Type: discovery.Added, Key: key, Metadata: meta, Endpoint: endpoint}, false)
}

// RegisterPrinter announces an in-process provider with its own handle.
func (s *Source) RegisterPrinter(key string, meta registry.Metadata, handle registry.Printer) error {
	return s.emit(discovery.Event{Type: discovery.Added, Key: key, Metadata: meta, Handle: handle}, false)
}

// Update replaces the metadata of a registered provider.
func (s *Source) Update(key string, meta registry.Metadata, endpoint string) error {
	return s.emit(discovery.Event{Type: discovery.Modified, Key: key, Metadata: meta, Endpoint: endpoint}, true)
}

// UpdatePrinter replaces the metadata and handle of an in-process provider.
func (s *Source) UpdatePrinter(key string, meta registry.Metadata, handle registry.Printer) error {
	return s.emit(discovery.Event{Type: discovery.Modified, Key: key, Metadata: meta, Handle: handle}, true)
}

// Deregister announces that a provider went away.
func (s *Source) Deregister(key string) error {
	return s.emit(discovery.Event{Type: discovery.Removed, Key: key}, true)
}

func (s *Source) emit(ev discovery.Event, mustExist bool) error {
	if err := ev.Check(); err != nil {
		return errors.InvalidInput("key", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.closed:
		return discovery.ErrSourceClosed
	default:
	}
	switch {
	case mustExist && !s.known[ev.Key]:
		return errors.NotFound("static provider", ev.Key)
	case !mustExist && s.known[ev.Key]:
		return errors.AlreadyExists("static provider", ev.Key)
	}
	if ev.Type == discovery.Removed {
		delete(s.known, ev.Key)
	} else {
		s.known[ev.Key] = true
	}

	ev.Metadata = ev.Metadata.Clone()
	s.pending = append(s.pending, ev)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Events starts relaying queued events. It may be called once.
func (s *Source) Events(ctx context.Context) (<-chan discovery.Event, error) {
	s.mu.Lock()
	if s.subscribed {
		s.mu.Unlock()
		return nil, discovery.ErrAlreadySubscribed
	}
	s.subscribed = true
	s.mu.Unlock()

	out := make(chan discovery.Event)
	go s.pump(ctx, out)
	return out, nil
}

func (s *Source) pump(ctx context.Context, out chan<- discovery.Event) {
	defer close(out)
	for {
		s.mu.Lock()
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()

		for _, ev := range batch {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			case <-s.closed:
				return
			}
		}

		select {
		case <-s.wake:
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		}
	}
}

// Close stops the relay. Later registration calls fail.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.log.Debug("Static source closed")
	})
	return nil
}

// String describes the source for diagnostics.
func (s *Source) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("static(%d providers)", len(s.known))
}

var _ discovery.Source = (*Source)(nil)
