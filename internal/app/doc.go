// Package app provides the command logic of the httplog CLI.
// It builds a pipeline from the loaded configuration, wraps HTTP clients with
// the logging transport, and runs plain HTTP and GraphQL requests through them
// so every exchange is rendered to the log.
package app
