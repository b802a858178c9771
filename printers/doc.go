// Package printers holds the built-in printer handles of the inventory
// daemon and the factory that picks one for a discovered provider.
//
//   - Runtime reports Go runtime statistics of this process.
//   - Build reports the binary's version information.
//   - Remote fetches a printer's output from another inventory daemon.
package printers
