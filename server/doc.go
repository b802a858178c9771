// Package server provides the HTTP server of the inventory daemon: a Gin
// engine served over HTTP/1.1 and cleartext HTTP/2 (h2c), with the standard
// middleware stack and probe endpoints.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request ID generation and propagation
//   - RequestLogger: request logging with latency tracking
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /alive: liveness probe
//   - /ready: readiness probe
//   - /version: build version information
package server
