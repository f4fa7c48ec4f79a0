package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/coverwallet/httplog/internal/httplog"
)

const testPage = "<html>\n  <head>\n    <title>Test Page</title>\n  </head>\n  <body>\n    <h1>This is the test page.</h1>\n  </body>\n</html>"

// roundTripperFunc adapts a function to http.RoundTripper.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// newTestClient returns a client logging through a fresh store into the observed logs.
func newTestClient(t *testing.T, mutate func(*httplog.Configuration)) (*http.Client, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)

	store := httplog.NewStore()
	if mutate != nil {
		store.Update(mutate)
	}

	pipeline := httplog.NewPipeline(store, httplog.NewZapSink(zap.New(core)))

	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport.
	t.Cleanup(transport.CloseIdleConnections)

	return &http.Client{Transport: NewLogTransport(transport, pipeline)}, logs
}

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")

		if r.Method == http.MethodPost {
			body, _ := io.ReadAll(r.Body)
			_, _ = w.Write(body)

			return
		}

		_, _ = io.WriteString(w, testPage)
	}))
	t.Cleanup(server.Close)

	return server
}

func gzipped(t *testing.T, data string) []byte {
	t.Helper()

	var buf bytes.Buffer

	writer := gzip.NewWriter(&buf)
	_, err := writer.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return buf.Bytes()
}

func observedMessages(logs *observer.ObservedLogs) []string {
	entries := logs.AllUntimed()

	result := make([]string, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entry.Message)
	}

	return result
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(body)
}

// TestLogTransport_Get tests the default verbose record of a GET request.
func TestLogTransport_Get(t *testing.T) {
	t.Parallel()

	server := newPageServer(t)
	client, logs := newTestClient(t, nil)

	resp, err := client.Get(server.URL + "/index.html") //nolint:noctx // Test code, context not needed.
	require.NoError(t, err)
	assert.Equal(t, testPage, readBody(t, resp))

	lines := observedMessages(logs)
	require.Len(t, lines, 5)

	hostPort := strings.TrimPrefix(server.URL, "http://")

	assert.Equal(t, "[httplog] Connecting: "+hostPort, lines[0])
	assert.Equal(t, "[httplog] Sending: GET "+server.URL+"/index.html", lines[1])
	assert.Equal(t, "[httplog] Status: 200", lines[2])
	assert.Regexp(t, regexp.MustCompile(`^\[httplog\] Benchmark: \d+(\.\d{1,6})?$`), lines[3])
	assert.Equal(t, "[httplog] Response:\n"+testPage, lines[4])

	for _, line := range lines {
		assert.NotContains(t, line, "Header:")
	}
}

// TestLogTransport_PostData tests that request data is logged and still delivered.
func TestLogTransport_PostData(t *testing.T) {
	t.Parallel()

	server := newPageServer(t)

	tests := []struct {
		name string
		body func() io.Reader
	}{
		{
			name: "replayable body",
			body: func() io.Reader { return strings.NewReader("foo=bar&bar=foo") },
		},
		{
			name: "one-shot body",
			body: func() io.Reader { return iotest.OneByteReader(strings.NewReader("foo=bar&bar=foo")) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, logs := newTestClient(t, nil)

			//nolint:noctx // Test code, context not needed.
			resp, err := client.Post(server.URL, "application/x-www-form-urlencoded", tt.body())
			require.NoError(t, err)
			assert.Equal(t, "foo=bar&bar=foo", readBody(t, resp))

			assert.Equal(t, 1, logs.FilterMessage("[httplog] Data: foo=bar&bar=foo").Len())
			assert.Equal(t, 1, logs.FilterMessage("[httplog] Sending: POST "+server.URL).Len())
		})
	}
}

// TestLogTransport_Headers tests header lines when enabled.
func TestLogTransport_Headers(t *testing.T) {
	t.Parallel()

	server := newPageServer(t)
	client, logs := newTestClient(t, func(c *httplog.Configuration) { c.LogHeaders = true })

	req, err := http.NewRequest(http.MethodGet, server.URL, nil) //nolint:noctx // Test code, context not needed.
	require.NoError(t, err)
	req.Header.Set("Foo", "bar")

	resp, err := client.Do(req)
	require.NoError(t, err)
	readBody(t, resp)

	assert.Equal(t, 1, logs.FilterMessage("[httplog] Header: Foo: bar").Len())
	assert.Equal(t, 1, logs.FilterMessage("[httplog] Header: Content-Type: text/html").Len())
}

// TestLogTransport_Gzip tests that compressed responses are logged decompressed.
func TestLogTransport_Gzip(t *testing.T) {
	t.Parallel()

	compressed := gzipped(t, testPage)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "gzip")

		if r.Method == http.MethodHead {
			return
		}

		_, _ = w.Write(compressed)
	}))
	t.Cleanup(server.Close)

	t.Run("transparent decompression", func(t *testing.T) {
		t.Parallel()

		client, logs := newTestClient(t, nil)

		resp, err := client.Get(server.URL) //nolint:noctx // Test code, context not needed.
		require.NoError(t, err)
		assert.True(t, resp.Uncompressed)
		assert.Equal(t, testPage, readBody(t, resp))

		assert.Equal(t, 1, logs.FilterMessage("[httplog] Response:\n"+testPage).Len())
	})

	t.Run("explicit accept-encoding", func(t *testing.T) {
		t.Parallel()

		client, logs := newTestClient(t, nil)

		req, err := http.NewRequest(http.MethodGet, server.URL, nil) //nolint:noctx // Test code, context not needed.
		require.NoError(t, err)
		req.Header.Set("Accept-Encoding", "gzip")

		resp, err := client.Do(req)
		require.NoError(t, err)
		assert.False(t, resp.Uncompressed)
		assert.Equal(t, string(compressed), readBody(t, resp))

		assert.Equal(t, 1, logs.FilterMessage("[httplog] Response:\n"+testPage).Len())
	})

	t.Run("head request", func(t *testing.T) {
		t.Parallel()

		client, logs := newTestClient(t, nil)

		resp, err := client.Head(server.URL) //nolint:noctx // Test code, context not needed.
		require.NoError(t, err)
		readBody(t, resp)

		lines := observedMessages(logs)
		require.NotEmpty(t, lines)
		assert.Equal(t, "[httplog] Response:", lines[len(lines)-1])
		assert.Zero(t, logs.FilterMessageSnippet(httplog.BinaryMarker).Len())
	})
}

// TestLogTransport_Modes tests the compact and JSON records.
func TestLogTransport_Modes(t *testing.T) {
	t.Parallel()

	server := newPageServer(t)

	compact, compactLogs := newTestClient(t, func(c *httplog.Configuration) { c.CompactLog = true })

	resp, err := compact.Get(server.URL + "/index.html") //nolint:noctx // Test code, context not needed.
	require.NoError(t, err)
	readBody(t, resp)

	require.Equal(t, 1, compactLogs.Len())
	assert.Regexp(t,
		regexp.MustCompile(`^\[httplog\] GET http://.+/index\.html completed with status code 200 in (\d|\.)+$`),
		compactLogs.All()[0].Message)

	jsonClient, jsonLogs := newTestClient(t, func(c *httplog.Configuration) {
		c.JSONLog = true
		c.Prefix = httplog.LiteralPrefix("")
	})

	resp, err = jsonClient.Get(server.URL) //nolint:noctx // Test code, context not needed.
	require.NoError(t, err)
	readBody(t, resp)

	require.Equal(t, 1, jsonLogs.Len())

	var logged map[string]any
	require.NoError(t, json.Unmarshal([]byte(jsonLogs.All()[0].Message), &logged))

	assert.Equal(t, "GET", logged["method"])
	assert.Equal(t, server.URL, logged["url"])
	assert.InDelta(t, 200, logged["response_code"], 0)
	assert.Equal(t, testPage, logged["response_body"])
	assert.Equal(t, "text/html", logged["content_type"])
	assert.Nil(t, logged["request_body"])
}

// TestLogTransport_Binary tests that binary bodies are not shown but still delivered.
func TestLogTransport_Binary(t *testing.T) {
	t.Parallel()

	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)

	client, logs := newTestClient(t, nil)

	resp, err := client.Get(server.URL) //nolint:noctx // Test code, context not needed.
	require.NoError(t, err)
	assert.Equal(t, string(payload), readBody(t, resp))

	assert.Equal(t, 1, logs.FilterMessage("[httplog] Response: (not showing binary data)").Len())
}

// TestLogTransport_NotApproved tests that rejected URLs pass through silently.
func TestLogTransport_NotApproved(t *testing.T) {
	t.Parallel()

	server := newPageServer(t)

	for _, mutate := range []func(*httplog.Configuration){
		func(c *httplog.Configuration) { c.Enabled = false },
		func(c *httplog.Configuration) { c.URLBlacklistPattern = regexp.MustCompile(`127\.0\.0\.1`) },
		func(c *httplog.Configuration) { c.URLWhitelistPattern = regexp.MustCompile(`example\.com`) },
	} {
		client, logs := newTestClient(t, mutate)

		resp, err := client.Get(server.URL) //nolint:noctx // Test code, context not needed.
		require.NoError(t, err)
		assert.Equal(t, testPage, readBody(t, resp))

		assert.Zero(t, logs.Len())
	}
}

// TestLogTransport_RoundTripError tests that transport errors are returned unchanged.
func TestLogTransport_RoundTripError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	core, logs := observer.New(zapcore.DebugLevel)
	pipeline := httplog.NewPipeline(httplog.NewStore(), httplog.NewZapSink(zap.New(core)))

	transport := NewLogTransport(roundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, errBoom
	}), pipeline)

	req, err := http.NewRequest(http.MethodGet, "http://localhost:9292/index.html", nil) //nolint:noctx // Test code, context not needed.
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req) //nolint:bodyclose // Body is empty on error.
	require.ErrorIs(t, err, errBoom)
	assert.Nil(t, resp)

	assert.Equal(t, []string{
		"[httplog] Connecting: localhost:9292",
		"[httplog] Sending: GET http://localhost:9292/index.html",
	}, observedMessages(logs))
}

// TestLogTransport_BodyReadError tests that an unreadable body is logged as absent
// and the failure is replayed to the caller.
func TestLogTransport_BodyReadError(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("connection reset")

	core, logs := observer.New(zapcore.DebugLevel)
	pipeline := httplog.NewPipeline(httplog.NewStore(), httplog.NewZapSink(zap.New(core)))

	transport := NewLogTransport(roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"text/plain"}},
			Body:       io.NopCloser(io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(errBroken))),
			Request:    req,
		}, nil
	}), pipeline)

	req, err := http.NewRequest(http.MethodGet, "http://localhost:9292/", nil) //nolint:noctx // Test code, context not needed.
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)

	defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

	body, err := io.ReadAll(resp.Body)
	require.ErrorIs(t, err, errBroken)
	assert.Equal(t, "partial", string(body))

	assert.Equal(t, 1, logs.FilterMessage("[httplog] Response:").Len())
}

// TestLogTransport_NilRequest tests the nil request guard.
func TestLogTransport_NilRequest(t *testing.T) {
	t.Parallel()

	transport := NewLogTransport(nil, nil)

	resp, err := transport.RoundTrip(nil) //nolint:bodyclose // Body is empty on error.
	require.ErrorIs(t, err, ErrNilRequest)
	assert.Nil(t, resp)
}
