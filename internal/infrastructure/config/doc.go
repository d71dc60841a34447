// Package config provides 12-factor configuration management for the
// animation compiler service and CLI.
//
// Configuration starts from Default, optionally overlays a YAML or TOML
// file (LoadFile), and finally applies environment variables.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, compression, body limit)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Sandbox: Concurrency and time limits for compilations and renders
//   - Composition: Video configuration exposed to components
//   - Remote: Server address used by the CLI
//
// Example Usage:
//
//	cfg, err := config.LoadFile("animforge.yaml")
//	if err != nil {
//		return err
//	}
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, COMPRESSION, MAX_BODY_BYTES
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - SANDBOX_MAX_CONCURRENT, SANDBOX_ACQUIRE_TIMEOUT_MS, SANDBOX_RENDER_TIMEOUT_MS,
//     SANDBOX_MAX_SOURCE_BYTES, SANDBOX_MAX_RENDER_DEPTH, SANDBOX_CONSOLE
//   - COMPOSITION_WIDTH, COMPOSITION_HEIGHT, COMPOSITION_FPS, COMPOSITION_DURATION
//   - ANIMFORGE_URL, ANIMFORGE_TIMEOUT_MS, ANIMFORGE_RETRIES
package config
