package printers

import (
	"fmt"

	"github.com/kbukum/inventory/discovery"
	"github.com/kbukum/inventory/httpclient"
	"github.com/kbukum/inventory/registry"
)

// Built-in printer kinds selectable through the discovery.KeyKind metadata.
const (
	KindRuntime = "runtime"
	KindBuild   = "build"
)

// NewHandleFactory returns the discovery.HandleFactory of the daemon.
// Providers naming a kind get the matching built-in printer; providers
// with an endpoint get a Remote printer using client.
func NewHandleFactory(service string, client *httpclient.Client) discovery.HandleFactory {
	rt := NewRuntime(service)
	return func(ev discovery.Event) (registry.Printer, error) {
		switch kind := ev.Metadata.Text(discovery.KeyKind); kind {
		case KindRuntime:
			return rt, nil
		case KindBuild:
			return Build{}, nil
		case "":
			if ev.Endpoint == "" {
				return nil, fmt.Errorf("provider %q has neither a printer kind nor an endpoint", ev.Key)
			}
			if client == nil {
				return nil, fmt.Errorf("provider %q is remote but no HTTP client is configured", ev.Key)
			}
			return NewRemote(client, ev.Endpoint, ev.Metadata.Text(registry.KeyName)), nil
		default:
			return nil, fmt.Errorf("unknown printer kind %q", kind)
		}
	}
}
