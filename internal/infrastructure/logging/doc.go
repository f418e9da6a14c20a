// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output (LOG_DEV=true)
//
// Components receive a named child logger and attach their own fields:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	log := logger.Component("terminal")
//	log.Info("terminal created", zap.String("terminal_id", id))
package logging
