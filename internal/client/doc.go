// Package client is a Go client for a running preview server.
//
// Built on go-resty/resty with a go-retryablehttp transport: connection
// errors, 429 and 5xx responses are retried with backoff, honouring
// Retry-After. A circuit breaker from the resilience package opens after
// repeated server failures so batch runs fail fast instead of waiting out
// every retry.
//
// Example Usage:
//
//	c := client.New(client.FromConfig(cfg.Remote))
//	res, err := c.Compile(ctx, apihttp.CompileRequest{Source: src})
package client
