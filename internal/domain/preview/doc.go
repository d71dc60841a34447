// Package preview is the service layer between the transports (HTTP,
// WebSocket, CLI) and the compiler.
//
// It assigns every compilation an ID, enforces source size, frame and
// composition limits, bounds concurrent sandbox work with a slot pool and
// applies the render timeout to each compilation and frame. Outcomes are
// logged with zap and recorded as Prometheus metrics.
package preview
