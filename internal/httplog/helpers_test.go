package httplog

import (
	"bytes"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testURL  = "http://localhost:9292/index.html"
	testPage = "<html>\n  <head>\n    <title>Test Page</title>\n  </head>\n  <body>\n    <h1>This is the test page.</h1>\n  </body>\n</html>"
)

// newTestExchange returns a GET exchange against testURL answered with testPage.
func newTestExchange() *Exchange {
	return &Exchange{
		Method: "GET",
		URL:    testURL,
		RequestHeaders: Header{
			{Name: "Accept", Value: "*/*"},
			{Name: "Foo", Value: "bar"},
		},
		StatusCode: 200,
		ResponseHeaders: Header{
			{Name: "Content-Type", Value: "text/html"},
			{Name: "Server", Value: "thin"},
		},
		ResponseBody: []byte(testPage),
		Elapsed:      1500 * time.Microsecond,
	}
}

// newObservedPipeline returns a pipeline with a fresh store and the observed logs of its sink.
func newObservedPipeline(t *testing.T) (*Pipeline, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)

	return NewPipeline(NewStore(), NewZapSink(zap.New(core))), logs
}

// messages returns the message of every observed entry.
func messages(logs *observer.ObservedLogs) []string {
	entries := logs.AllUntimed()

	result := make([]string, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entry.Message)
	}

	return result
}

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()

	var buf bytes.Buffer

	writer := gzip.NewWriter(&buf)
	_, err := writer.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return buf.Bytes()
}
