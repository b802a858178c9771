// Package version exposes build information of the inventory daemon.
//
// Version, commit, branch and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/inventory/version.Version=1.0.0"
//
// Missing values are filled from the module build info when available.
package version
