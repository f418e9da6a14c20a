// Package monitoring provides Prometheus metrics for the backend.
//
// Collectors are registered on an explicit prometheus.Registerer so the
// server can expose its own registry and tests can use throwaway ones.
//
// Metric families:
//   - backend_http_*: request counts and latency per route template
//   - backend_terminal*: live sessions, spawns, create failures by code,
//     exits by cause, relayed bytes, unknown-id operations
//   - backend_ws_*: display surface connections and message counts
package monitoring
