package http

import "net/http"

// HeaderInjector is a custom http.RoundTripper that injects default headers into HTTP requests.
// It wraps another http.RoundTripper and adds every provided header the request does not carry.
type HeaderInjector struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// headerProvider provides the headers to inject.
	headerProvider HeaderProvider
}

// NewHeaderInjector creates and returns a new instance of HeaderInjector.
// It takes an underlying http.RoundTripper and a HeaderProvider to supply the headers.
func NewHeaderInjector(next http.RoundTripper, headerProvider HeaderProvider) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return &HeaderInjector{
		next:           next,
		headerProvider: headerProvider,
	}
}

// RoundTrip executes a single HTTP transaction and injects the headers that are missing or empty.
// The caller's request is not modified: a clone is sent when headers are added.
// It implements the http.RoundTripper interface.
func (t *HeaderInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	var outgoing *http.Request

	for name, values := range t.headerProvider.GetHeaders() {
		if len(values) == 0 || req.Header.Get(name) != "" {
			continue
		}

		if outgoing == nil {
			outgoing = req.Clone(req.Context())
			if outgoing.Header == nil {
				outgoing.Header = make(http.Header)
			}
		}

		outgoing.Header.Del(name)

		for _, value := range values {
			outgoing.Header.Add(name, value)
		}
	}

	if outgoing == nil {
		return t.next.RoundTrip(req)
	}

	return t.next.RoundTrip(outgoing)
}
