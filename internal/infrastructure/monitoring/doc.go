/*
Package monitoring provides metrics collection for the animation service.

# Overview

Metrics are Prometheus collectors registered on a registry owned by each
Metrics value, so independent servers (and tests) never collide on the
global default registry.

# Features

- HTTP request metrics (latency, throughput, size) keyed by route template
- Compilation metrics by outcome, error kind and pipeline stage
- Frame render counts and latency
- Sandbox slot usage and rejections
- WebSocket connection and message metrics
- Uptime, Go runtime and process collectors

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer()
	res := compiler.Compile(source)
	metrics.RecordCompile(res.Success(), kind, stage, timer.Elapsed())
*/
package monitoring
