// Command server runs the animforge preview server.
//
// It compiles generated animation components inside a goja sandbox and
// renders their frames to element trees over HTTP (/compile, /render) and
// a WebSocket stream (/stream). Prometheus metrics are served on /metrics.
//
// Configuration comes from environment variables, optionally layered over
// a YAML or TOML file:
//
//	./server -config animforge.yaml
//	PORT=9000 SANDBOX_MAX_CONCURRENT=8 ./server
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// SIGINT and SIGTERM drain in-flight requests before exit.
package main
