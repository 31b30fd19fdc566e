// Package app assembles the web application: configuration, logging,
// telemetry, the WebSocket hub, the operation manager, every service and the
// chi router, plus the server lifecycle with graceful shutdown.
package app
