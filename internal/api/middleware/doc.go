// Package middleware provides the gin middleware stack: CORS, per-client
// rate limiting, request ids and access logging.
package middleware
