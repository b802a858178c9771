// Package discovery feeds provider registrations into the printer registry.
//
// A Source reports providers appearing, changing and disappearing as Events.
// The Dispatcher turns those events into registry mutations: it allocates a
// registration identity per source key, builds the printer handle, validates
// the metadata and calls Admit, Modify or Withdraw.
//
// # Backends
//
//   - discovery/static: providers from configuration plus in-process registration
//   - discovery/consul: HashiCorp Consul service catalog, watched with blocking queries
//   - discovery/kafka: registration events consumed from a Kafka topic
//
// Backends register a SourceFactory from their init function; import them
// for side effects to make them available to the Component.
package discovery
