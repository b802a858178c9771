// Package consul provides a discovery source that watches the Consul catalog.
//
// Every instance of a watched service is one printer provider. Its service
// metadata carries the printer properties under the underscore aliases
// accepted by discovery.MetadataFromStrings, and its address and port form
// the provider endpoint.
package consul

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/consul/api"

	"github.com/kbukum/inventory/discovery"
	"github.com/kbukum/inventory/logger"
	"github.com/kbukum/inventory/resilience"
)

func init() {
	discovery.RegisterSourceFactory("consul", func(_ discovery.Config, providerCfg any, log *logger.Logger) (discovery.Source, error) {
		cfg, ok := providerCfg.(*Config)
		if !ok || cfg == nil {
			cfg = &Config{}
		}
		return NewSource(*cfg, log)
	})
}

// Source implements discovery.Source with Consul blocking queries.
type Source struct {
	client *api.Client
	cfg    Config
	log    *logger.Logger

	mu         sync.Mutex
	subscribed bool
	cancel     context.CancelFunc
}

// NewSource creates a Source from cfg.
func NewSource(cfg Config, log *logger.Logger) (*Source, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("consul config: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	apiCfg := api.DefaultConfig()
	apiCfg.Address = cfg.Address
	apiCfg.Scheme = cfg.Scheme
	apiCfg.Token = cfg.Token
	apiCfg.Namespace = cfg.Namespace
	if cfg.Datacenter != "" {
		apiCfg.Datacenter = cfg.Datacenter
	}
	if cfg.TLS.IsEnabled() {
		apiCfg.TLSConfig = api.TLSConfig{
			Address:            cfg.TLS.ServerName,
			CAFile:             cfg.TLS.CAFile,
			CertFile:           cfg.TLS.CertFile,
			KeyFile:            cfg.TLS.KeyFile,
			InsecureSkipVerify: cfg.TLS.SkipVerify,
		}
	}

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}

	return &Source{
		client: client,
		cfg:    cfg,
		log:    log.WithComponent("discovery.consul"),
	}, nil
}

func (s *Source) Name() string { return "consul" }

// Events starts one watch per configured service. The channel closes when
// every watch has ended.
func (s *Source) Events(ctx context.Context) (<-chan discovery.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribed {
		return nil, discovery.ErrAlreadySubscribed
	}
	s.subscribed = true

	ctx, s.cancel = context.WithCancel(ctx)
	out := make(chan discovery.Event, 16)

	var wg sync.WaitGroup
	for _, service := range s.cfg.Services {
		wg.Add(1)
		go func(service string) {
			defer wg.Done()
			s.watch(ctx, service, out)
		}(service)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}

// watch follows one service with blocking queries and emits the differences
// between successive snapshots.
func (s *Source) watch(ctx context.Context, service string, out chan<- discovery.Event) {
	differ := discovery.NewDiffer()
	var lastIndex uint64
	failures := 0
	retry := resilience.RetryConfig{
		InitialBackoff: s.cfg.RetryInterval,
		MaxBackoff:     max(s.cfg.RetryInterval, 30*time.Second),
		BackoffFactor:  2,
		Jitter:         0.2,
	}

	for {
		if ctx.Err() != nil {
			return
		}

		opts := (&api.QueryOptions{
			WaitIndex: lastIndex,
			WaitTime:  s.cfg.WaitTime,
		}).WithContext(ctx)

		entries, meta, err := s.client.Health().Service(service, s.cfg.Tag, s.cfg.PassingOnly, opts)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			s.log.Warn("Consul watch error", logger.Fields(
				"service", service,
				"failures", failures,
				logger.FieldError, err.Error(),
			))
			if !resilience.Wait(ctx, retry.Backoff(failures)) {
				return
			}
			continue
		}
		failures = 0

		if meta.LastIndex == lastIndex {
			continue
		}
		// An index that goes backwards means the Consul state was reset.
		if meta.LastIndex < lastIndex {
			lastIndex = 0
			continue
		}
		lastIndex = meta.LastIndex

		instances := make([]discovery.ServiceInstance, 0, len(entries))
		for _, e := range entries {
			instances = append(instances, entryToInstance(service, e))
		}
		for _, ev := range differ.Diff(instances) {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Close stops every watch.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func entryToInstance(service string, e *api.ServiceEntry) discovery.ServiceInstance {
	address := e.Service.Address
	if address == "" && e.Node != nil {
		address = e.Node.Address
	}
	return discovery.ServiceInstance{
		ID:       service + "/" + e.Service.ID,
		Name:     e.Service.Service,
		Address:  address,
		Port:     e.Service.Port,
		Metadata: e.Service.Meta,
	}
}

var _ discovery.Source = (*Source)(nil)
