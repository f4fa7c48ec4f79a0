package http

//go:generate $MOCKGEN -source=header_provider.go -destination=mocks/header_provider_mock.go

import "net/http"

// HeaderProvider is an interface that defines a method for retrieving default request headers.
type HeaderProvider interface {
	// GetHeaders returns the headers to add to requests that lack them.
	GetHeaders() http.Header
}

// StaticHeaderProvider is a basic implementation of the HeaderProvider interface.
// It provides a fixed set of headers that is set during initialization.
type StaticHeaderProvider struct {
	// headers are the headers to return.
	headers http.Header
}

// NewStaticHeaderProvider creates and returns a new instance of StaticHeaderProvider.
func NewStaticHeaderProvider(headers http.Header) HeaderProvider {
	return &StaticHeaderProvider{headers: headers.Clone()}
}

// NewUserAgentProvider returns a provider of the User-Agent header only.
func NewUserAgentProvider(userAgent string) HeaderProvider {
	headers := make(http.Header, 1)
	headers.Set(userAgentHeader, userAgent)

	return &StaticHeaderProvider{headers: headers}
}

// GetHeaders returns a copy of the configured headers.
func (p *StaticHeaderProvider) GetHeaders() http.Header {
	return p.headers.Clone()
}
