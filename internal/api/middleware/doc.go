// Package middleware provides the Gin middleware stack of the HTTP API:
// CORS, per-IP and global rate limiting, request body limits and request
// logging.
package middleware
