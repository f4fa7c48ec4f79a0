package http

import "time"

const (
	// DefaultTimeout is the default timeout duration for HTTP requests.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent is the User-Agent sent when the caller sets none.
	DefaultUserAgent = "httplog/1.0 (+https://github.com/coverwallet/httplog)"

	// userAgentHeader is the HTTP header name for User-Agent.
	userAgentHeader = "User-Agent"
)
