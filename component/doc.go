// Package component defines the lifecycle contract shared by the long-running
// parts of the inventory daemon: the printer registry, the discovery
// dispatcher and the HTTP server.
//
// A Manager starts components in the order they were added and stops them in
// reverse, so a component may rely on everything added before it.
package component
