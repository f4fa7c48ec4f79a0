package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/coverwallet/httplog/internal/httplog"
	"github.com/coverwallet/httplog/internal/logger"
)

// LogTransport is a custom http.RoundTripper that logs HTTP requests and responses.
// It wraps another http.RoundTripper and reports every admitted exchange to a pipeline.
type LogTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// pipeline decides admission and renders the exchange.
	pipeline *httplog.Pipeline
}

// Static error definitions for better error handling.
var (
	// ErrNilRequest indicates that the HTTP request is nil.
	ErrNilRequest = errors.New("request is nil")
)

// NewLogTransport creates and returns a new instance of LogTransport.
// A nil next uses http.DefaultTransport, a nil pipeline logs through the
// process-wide configuration and logger.
func NewLogTransport(next http.RoundTripper, pipeline *httplog.Pipeline) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	if pipeline == nil {
		pipeline = httplog.NewPipeline(nil, nil)
	}

	return &LogTransport{
		next:     next,
		pipeline: pipeline,
	}
}

// RoundTrip executes a single HTTP transaction and logs the request and response.
// It implements the http.RoundTripper interface.
func (t *LogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	if req.URL == nil || !t.pipeline.Approved(req.URL.String()) {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()

	ex := &httplog.Exchange{
		Method:         req.Method,
		URL:            req.URL.String(),
		RequestHeaders: httplog.HeaderFromHTTP(req.Header),
		RequestBody:    captureRequestBody(req),
		SkipBody:       req.Method == http.MethodHead,
	}

	t.pipeline.Begin(ex)

	// Record the start time to measure the duration of the request.
	startTime := time.Now()

	// Forward the request to the underlying RoundTripper.
	resp, err := t.next.RoundTrip(req)

	ex.Elapsed = time.Since(startTime)

	if err != nil {
		logger.Debugf(ctx, "Request failed: %s %s | Error: %v", ex.Method, ex.URL, err)

		return resp, err
	}

	ex.StatusCode = resp.StatusCode
	ex.ResponseHeaders = responseHeaders(resp)
	ex.ResponseBody = captureResponseBody(resp)
	ex.ContentType = resp.Header.Get("Content-Type")

	if !resp.Uncompressed {
		ex.ContentEncoding = resp.Header.Get("Content-Encoding")
	}

	t.pipeline.Complete(ex)

	return resp, nil
}

// captureRequestBody returns the request payload and leaves req able to send it.
// A body that cannot be read is reported as absent.
func captureRequestBody(req *http.Request) []byte {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}

	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil
		}

		defer body.Close() //nolint:errcheck // In-memory copy of the body.

		data, err := io.ReadAll(body)
		if err != nil {
			return nil
		}

		return data
	}

	data, err := io.ReadAll(req.Body)
	req.Body.Close() //nolint:errcheck,gosec // The body is replaced below.

	req.Body = replayBody(data, err)

	if err != nil {
		return nil
	}

	return data
}

// captureResponseBody reads the whole body and replaces it with an in-memory
// reader holding the same bytes. A read failure is replayed to the caller.
func captureResponseBody(resp *http.Response) []byte {
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	resp.Body.Close() //nolint:errcheck,gosec // The body is replaced below.

	resp.Body = replayBody(data, err)

	if err != nil {
		return nil
	}

	return data
}

// responseHeaders copies the response headers, dropping Content-Encoding
// when Go already removed the coding from the body.
func responseHeaders(resp *http.Response) httplog.Header {
	if !resp.Uncompressed {
		return httplog.HeaderFromHTTP(resp.Header)
	}

	header := resp.Header.Clone()
	header.Del("Content-Encoding")

	return httplog.HeaderFromHTTP(header)
}

// replayBody returns a body yielding data and then err, or io.EOF when err is nil.
func replayBody(data []byte, err error) io.ReadCloser {
	if err == nil {
		return io.NopCloser(bytes.NewReader(data))
	}

	return io.NopCloser(io.MultiReader(bytes.NewReader(data), errorReader{err: err}))
}

// errorReader fails every read with err.
type errorReader struct {
	err error
}

func (r errorReader) Read([]byte) (int, error) {
	return 0, r.err
}
