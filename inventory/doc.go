// Package inventory renders the active printers of a registry as text, JSON
// and zip reports and serves them over HTTP.
package inventory
