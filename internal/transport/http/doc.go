// Package http provides the net/http adapter of the httplog pipeline.
//
// LogTransport is an http.RoundTripper that captures each admitted exchange
// and hands it to an httplog.Pipeline, leaving the request and response
// observably unchanged for the caller. HeaderInjector fills in default
// request headers such as User-Agent.
package http
