package httplog

import (
	"net"
	"net/url"
	"strings"
	"time"
)

// defaultPorts maps URL schemes to the port used when the URL names none.
//
//nolint:gochecknoglobals // This is an immutable lookup table used as a constant.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
}

// Exchange is one request/response pair as captured by an adapter.
// It is built by a single adapter call and consumed once.
type Exchange struct {
	// Method is the request method.
	Method string
	// URL is the full request URL.
	URL string
	// RequestHeaders are the headers sent.
	RequestHeaders Header
	// RequestBody is the request payload, nil when absent.
	RequestBody []byte
	// StatusCode is the response status, zero when unknown.
	StatusCode int
	// ResponseHeaders are the headers received.
	ResponseHeaders Header
	// ResponseBody is the raw response payload, nil when absent.
	ResponseBody []byte
	// Elapsed is the time spent in the client library's blocking call.
	Elapsed time.Duration
	// ContentEncoding is the declared encoding. Empty falls back to the Content-Encoding response header.
	ContentEncoding string
	// ContentType is the declared type. Empty falls back to the Content-Type response header.
	ContentType string
	// Connectionless suppresses the connect line for transports without a visible connection step.
	Connectionless bool
	// SkipBody marks exchanges that transfer no body, such as HEAD, so nothing is decompressed.
	SkipBody bool
}

// method returns the upper-cased method, GET when empty.
func (e *Exchange) method() string {
	if e.Method == "" {
		return "GET"
	}

	return strings.ToUpper(e.Method)
}

// HostPort returns the host:port the request connects to, or an empty
// string when the URL names no host.
func (e *Exchange) HostPort() string {
	u, err := url.Parse(e.URL)
	if err != nil || u.Hostname() == "" {
		return ""
	}

	port := u.Port()
	if port == "" {
		port = defaultPorts[strings.ToLower(u.Scheme)]
	}

	if port == "" {
		return u.Hostname()
	}

	return net.JoinHostPort(u.Hostname(), port)
}

// Encoding returns the declared content encoding.
func (e *Exchange) Encoding() string {
	if e.ContentEncoding != "" {
		return e.ContentEncoding
	}

	return e.ResponseHeaders.Get("Content-Encoding")
}

// MediaType returns the declared response content type.
func (e *Exchange) MediaType() string {
	if e.ContentType != "" {
		return e.ContentType
	}

	return e.ResponseHeaders.Get("Content-Type")
}
