// Package kafka provides a discovery source that consumes provider
// registration events from a Kafka topic.
//
// Each message value is a JSON object:
//
//	{"type":"added","key":"host-1/bundles","metadata":{"inventory.printer.name":"bundles"},"endpoint":"host-1:8080"}
//
// When the key is empty the message key is used. Messages are consumed with a
// consumer group so several daemons can share one topic.
package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/inventory/discovery"
	"github.com/kbukum/inventory/logger"
	"github.com/kbukum/inventory/resilience"
)

func init() {
	discovery.RegisterSourceFactory("kafka", func(_ discovery.Config, providerCfg any, log *logger.Logger) (discovery.Source, error) {
		cfg, ok := providerCfg.(*Config)
		if !ok || cfg == nil {
			cfg = &Config{}
		}
		return NewSource(*cfg, log)
	})
}

// messageReader is the part of *kafkago.Reader the source uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

var readBackoff = resilience.RetryConfig{
	InitialBackoff: time.Second,
	MaxBackoff:     30 * time.Second,
	BackoffFactor:  2,
	Jitter:         0.2,
}

// Source implements discovery.Source on a kafka-go consumer group reader.
type Source struct {
	reader messageReader
	topic  string
	log    *logger.Logger

	mu         sync.Mutex
	subscribed bool
	failures   int
}

// NewSource creates a Source from cfg.
func NewSource(cfg Config, log *logger.Logger) (*Source, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka source config: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	dialer, err := newDialer(&cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka source dialer: %w", err)
	}

	slog := log.WithComponent("discovery.kafka")
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:           cfg.Brokers,
		Topic:             cfg.Topic,
		GroupID:           cfg.GroupID,
		Dialer:            dialer,
		StartOffset:       kafkago.FirstOffset,
		MinBytes:          1,
		MaxBytes:          1e6,
		SessionTimeout:    parseDuration(cfg.SessionTimeout),
		HeartbeatInterval: parseDuration(cfg.HeartbeatInterval),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			slog.Error("reader: "+fmt.Sprintf(msg, args...), logger.Fields("topic", cfg.Topic))
		}),
	})

	return newSource(reader, cfg.Topic, slog), nil
}

func newSource(reader messageReader, topic string, log *logger.Logger) *Source {
	return &Source{reader: reader, topic: topic, log: log}
}

func (s *Source) Name() string { return "kafka" }

// Events starts the consume loop. Malformed messages are logged and skipped.
func (s *Source) Events(ctx context.Context) (<-chan discovery.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribed {
		return nil, discovery.ErrAlreadySubscribed
	}
	s.subscribed = true

	out := make(chan discovery.Event)
	go s.consume(ctx, out)
	return out, nil
}

func (s *Source) consume(ctx context.Context, out chan<- discovery.Event) {
	defer close(out)
	for {
		msg, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			if !s.backoff(ctx, err) {
				return
			}
			continue
		}
		s.failures = 0

		ev, err := decodeEvent(msg)
		if err != nil {
			s.log.Warn("Skipping malformed registration event", logger.Fields(
				"topic", msg.Topic,
				"offset", msg.Offset,
				logger.FieldError, err.Error(),
			))
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// backoff waits after a read failure. It returns false when ctx ended.
func (s *Source) backoff(ctx context.Context, err error) bool {
	s.failures++
	if s.failures <= 3 {
		s.log.Error("Kafka read error", logger.Fields(
			logger.FieldError, err.Error(),
			"failures", s.failures,
			"topic", s.topic,
		))
	}

	return resilience.Wait(ctx, readBackoff.Backoff(s.failures))
}

// Close shuts the reader down; the event channel closes afterwards.
func (s *Source) Close() error {
	return s.reader.Close()
}

// decodeEvent parses a registration event from a message value. Integral
// metadata numbers are kept as int64 so rankings survive the JSON round.
func decodeEvent(msg kafkago.Message) (discovery.Event, error) {
	var ev discovery.Event
	dec := json.NewDecoder(bytes.NewReader(msg.Value))
	dec.UseNumber()
	if err := dec.Decode(&ev); err != nil {
		return discovery.Event{}, fmt.Errorf("decode registration event: %w", err)
	}
	for k, v := range ev.Metadata {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			ev.Metadata[k] = i
		} else {
			ev.Metadata[k] = n.String()
		}
	}
	if ev.Key == "" {
		ev.Key = string(msg.Key)
	}
	if err := ev.Check(); err != nil {
		return discovery.Event{}, err
	}
	return ev, nil
}

var _ discovery.Source = (*Source)(nil)
