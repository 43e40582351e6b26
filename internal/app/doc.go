// Package app wires the destaques HTTP service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Resolve and create the working directories
//	2. Initialize OpenTelemetry and the pipeline metrics
//	3. Build the services (processing, dispatch, health, files)
//	4. Set up middleware and mount the handlers
//	5. Configure the HTTP server
//
// Configuration and logging are set up by the caller, so the CLI can share
// NewServices without starting a server.
//
// # Usage
//
//	app, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
//
// Run blocks until the context is cancelled or SIGINT/SIGTERM arrives, then
// shuts the server and the telemetry providers down within
// Server.ShutdownTimeout.
package app
