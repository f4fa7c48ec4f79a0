package httplog

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHeader_Lookup tests case-insensitive lookups.
func TestHeader_Lookup(t *testing.T) {
	t.Parallel()

	var h Header

	h.Add("Set-Cookie", "a=1")
	h.Add("content-type", "text/plain")
	h.Add("set-cookie", "b=2")

	assert.Equal(t, "text/plain", h.Get("Content-Type"))
	assert.Equal(t, "a=1", h.Get("SET-COOKIE"))
	assert.Equal(t, []string{"a=1", "b=2"}, h.Values("Set-Cookie"))
	assert.Empty(t, h.Get("Missing"))
	assert.Nil(t, h.Values("Missing"))
}

// TestHeader_Map tests flattening into a mapping.
func TestHeader_Map(t *testing.T) {
	t.Parallel()

	h := Header{
		{Name: "Accept", Value: "*/*"},
		{Name: "Vary", Value: "Accept"},
		{Name: "vary", Value: "Origin"},
	}

	assert.Equal(t, map[string]string{"Accept": "*/*", "Vary": "Accept, Origin"}, h.Map())
	assert.NotNil(t, Header(nil).Map())
	assert.Empty(t, Header(nil).Map())
}

// TestHeaderFromHTTP tests conversion from net/http headers.
func TestHeaderFromHTTP(t *testing.T) {
	t.Parallel()

	src := http.Header{}
	src.Add("X-B", "2")
	src.Add("X-A", "1")
	src.Add("X-B", "3")

	assert.Equal(t, Header{
		{Name: "X-A", Value: "1"},
		{Name: "X-B", Value: "2"},
		{Name: "X-B", Value: "3"},
	}, HeaderFromHTTP(src))

	assert.Nil(t, HeaderFromHTTP(nil))
}
