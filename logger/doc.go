// Package logger provides structured logging for the parmap engine
// using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewDefault("parmap").WithComponent("pool")
//	log.Info("pool started", logger.Fields("size", 8))
package logger
