// Package http exposes the preview service over a JSON API.
//
// Routes:
//
//	GET  /              service banner
//	GET  /health        sandbox pool and metric snapshot
//	GET  /capabilities  capability table in binding order
//	POST /compile       compile a component, return its diagnostic
//	POST /render        compile and render frames to node trees, optionally HTML
//	GET  /metrics       Prometheus exposition
//
// Compilation diagnostics are successful responses with "success": false.
// Error statuses are reserved for refused requests: 400 for bad frame
// selections or compositions, 413 for oversized input, 503 when no sandbox
// is free and 504 when a render runs out of time.
package http
