// Package app wires configuration, telemetry, services and the HTTP router of
// the edipulse web service, and owns the server lifecycle.
//
// # Routes
//
//	/ws            progress feed (websocket)
//	/api/health    health and counters
//	/api/version   build information
//	/api/analyze   analysis upload, rate limited and size capped
//	/metrics       Prometheus scrape endpoint when metrics are enabled
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger, providers)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
package app
