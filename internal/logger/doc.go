// Package logger wraps the Zap logging library behind a process-wide logger.
// It exposes context-first helpers (plain, formatted and key-value variants),
// level parsing, and an atomic level so the verbosity chosen in configuration
// applies to loggers created before it was loaded.
// The httplog pipeline uses it as its default line sink.
package logger
