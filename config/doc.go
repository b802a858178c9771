// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment.
//
// # Usage
//
//	var cfg Config
//	err := config.LoadConfig("inventoryd", &cfg)
//
// Environment variables override file values. Keys are the upper-cased
// mapstructure path joined by underscores, optionally prefixed
// (e.g. INVENTORY_SERVER_PORT with WithEnvPrefix("inventory")).
package config
