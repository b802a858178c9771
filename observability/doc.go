// Package observability wires OpenTelemetry tracing and metrics exported
// over OTLP/HTTP.
//
// The Component initializes the global tracer and meter providers on Start
// and flushes them on Stop. Instruments and tracers obtained through Meter
// and Tracer before Start are forwarded to the real providers once they are
// installed.
package observability
