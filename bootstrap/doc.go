// Package bootstrap runs a service: it validates the typed configuration,
// initializes logging, starts components in order, waits for SIGINT or
// SIGTERM and shuts everything down in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.Add(registryComponent)
//	app.Add(serverComponent)
//	err = app.Run(ctx)
package bootstrap
