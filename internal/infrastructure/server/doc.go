// Package server assembles the terminal service: configuration, logging,
// metrics, the session manager and the HTTP and WebSocket surfaces.
package server
