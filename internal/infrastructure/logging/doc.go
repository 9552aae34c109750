// Package logging provides structured logging for Gray Logic Connect.
//
// It is a thin layer over the standard log/slog package: New reads the
// logging section of the configuration file and returns a Logger whose
// records all carry service and version attributes, ready for log
// aggregation. Default returns a stdout JSON logger for the window before
// configuration has been loaded.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json for ingestion, text for development
//	  output: "stdout"   # stdout or stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("broker connected", "host", cfg.Broker.Host)
//	logger.Error("publish failed", "error", err)
//
// Derive component loggers with With:
//
//	apiLog := logger.With("component", "api")
//
// Never log secrets: broker passwords, API tokens and message payloads that
// may contain credentials stay out of log records.
package logging
