// Package server wires configuration, the preview service and the HTTP and
// WebSocket transports into one http.Server.
//
// Middleware order: recovery, tracing, metrics, access log, CORS, per-client
// rate limiting, body limit. Responses are gzipped unless disabled;
// WebSocket upgrades bypass compression.
package server
