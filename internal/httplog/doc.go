// Package httplog implements the instrumentation pipeline that turns captured
// HTTP exchanges into log records.
//
// An adapter for a particular client library asks the Pipeline whether a URL
// is approved, fills in an Exchange as the request is sent and the response
// arrives, and hands it to Begin and Complete. The pipeline takes a
// Configuration snapshot from its Store, decodes the response body, renders
// the record in verbose, compact or JSON mode and writes every line to a Sink.
//
// Logging is a side channel: nothing in this package returns an error to the
// adapter, and a failure while rendering only costs the affected line.
package httplog
