package testutil

import (
	"context"
	"sync"

	"github.com/kbukum/inventory/discovery"
)

// Source is a discovery.Source whose events are pushed by the test.
type Source struct {
	name      string
	in        chan discovery.Event
	closed    chan struct{}
	closeOnce sync.Once

	mu         sync.Mutex
	subscribed bool
}

var _ discovery.Source = (*Source)(nil)

// NewSource creates a Source named name.
func NewSource(name string) *Source {
	return &Source{
		name:   name,
		in:     make(chan discovery.Event),
		closed: make(chan struct{}),
	}
}

func (s *Source) Name() string { return s.name }

// Emit hands ev to the subscriber. It blocks until the event is taken and
// returns false when the source is closed.
func (s *Source) Emit(ev discovery.Event) bool {
	select {
	case s.in <- ev:
		return true
	case <-s.closed:
		return false
	}
}

func (s *Source) Events(ctx context.Context) (<-chan discovery.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribed {
		return nil, discovery.ErrAlreadySubscribed
	}
	s.subscribed = true

	out := make(chan discovery.Event)
	go func() {
		defer close(out)
		for {
			select {
			case ev := <-s.in:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				case <-s.closed:
					return
				}
			case <-ctx.Done():
				return
			case <-s.closed:
				return
			}
		}
	}()
	return out, nil
}

func (s *Source) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}
