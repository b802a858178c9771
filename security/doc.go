// Package security holds the TLS client settings shared by the outbound
// transports of the daemon: Consul, Kafka and remote printer fetches.
package security
