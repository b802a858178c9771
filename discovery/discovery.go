package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/kbukum/inventory/registry"
)

// Common discovery errors.
var (
	ErrSourceClosed      = errors.New("discovery source closed")
	ErrAlreadySubscribed = errors.New("discovery source events already subscribed")
)

// EventType is the kind of change a Source reports.
type EventType string

const (
	Added    EventType = "added"
	Modified EventType = "modified"
	Removed  EventType = "removed"
)

// KeyKind is the metadata key naming the built-in printer a provider wants.
const KeyKind = "inventory.printer.kind"

// Event is one provider change reported by a Source.
type Event struct {
	Type EventType `json:"type"`
	// Key identifies the provider within its source.
	Key      string            `json:"key"`
	Metadata registry.Metadata `json:"metadata,omitempty"`
	// Endpoint is where a remote provider can be reached, if any.
	Endpoint string `json:"endpoint,omitempty"`

	// Source is filled in by the Dispatcher from Source.Name when empty.
	Source string `json:"-"`
	// Handle carries an in-process printer. When nil the Dispatcher's
	// HandleFactory builds one.
	Handle registry.Printer `json:"-"`
}

// Check reports whether the event is well formed.
func (e Event) Check() error {
	switch e.Type {
	case Added, Modified, Removed:
	default:
		return fmt.Errorf("unknown discovery event type %q", e.Type)
	}
	if e.Key == "" {
		return fmt.Errorf("discovery event without key")
	}
	return nil
}

// Source reports provider changes. Events may be called once; the channel is
// closed when ctx ends or the source is closed.
type Source interface {
	Name() string
	Events(ctx context.Context) (<-chan Event, error)
	Close() error
}

// ServiceInstance is a provider as seen in a service catalog snapshot.
type ServiceInstance struct {
	ID       string
	Name     string
	Address  string
	Port     int
	Metadata map[string]string
}

// Endpoint returns host:port, or the bare address when no port is known.
func (s ServiceInstance) Endpoint() string {
	if s.Port <= 0 {
		return s.Address
	}
	return net.JoinHostPort(s.Address, strconv.Itoa(s.Port))
}

var metadataAliases = map[string]string{
	"printer_name":    registry.KeyName,
	"printer_title":   registry.KeyTitle,
	"printer_format":  registry.KeyFormat,
	"printer_kind":    KeyKind,
	"service_ranking": registry.KeyRanking,
}

// MetadataFromStrings converts catalog metadata into a registry bag.
// Catalogs that forbid dots in keys may use the underscore aliases
// printer_name, printer_title, printer_format, printer_kind and
// service_ranking.
func MetadataFromStrings(m map[string]string) registry.Metadata {
	out := make(registry.Metadata, len(m))
	for k, v := range m {
		if alias, ok := metadataAliases[k]; ok {
			k = alias
		}
		out[k] = v
	}
	return out
}
