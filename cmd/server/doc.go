// Package main is the entry point for the terminal service.
//
// The server hosts interactive shells on pseudo terminals and streams their
// output to a single display surface over a WebSocket.
//
// The server provides:
//   - WebSocket channel at /terminal for create, write, resize and destroy
//   - REST API under /terminals mirroring the same operations
//   - Directory listings for the file browser
//   - Prometheus metrics at /metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server -port 8000 -host 127.0.0.1
//
//	# Development mode (colored logs, debug level)
//	LOG_DEV=true LOG_LEVEL=debug ./server
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown, every shell is terminated
package main
