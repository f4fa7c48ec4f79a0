package httplog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// truncatedSuffix marks a body cut at MaxBodyLength.
const truncatedSuffix = "... [truncated]"

//nolint:gochecknoglobals // This is immutable, pre-compiled regex pattern and used as a constant.
var lineBreakPattern = regexp.MustCompile(`\r?\n`)

// jsonRecord is the object written in JSON mode.
type jsonRecord struct {
	Method          string            `json:"method"`
	URL             string            `json:"url"`
	RequestBody     *string           `json:"request_body"`
	RequestHeaders  map[string]string `json:"request_headers"`
	ResponseCode    int               `json:"response_code"`
	ResponseBody    string            `json:"response_body"`
	ResponseHeaders map[string]string `json:"response_headers"`
	Benchmark       float64           `json:"benchmark"`
	Encoding        string            `json:"encoding,omitempty"`
	ContentType     string            `json:"content_type,omitempty"`
}

// record accumulates the formatted lines of one exchange.
type record struct {
	cfg    Configuration
	prefix string
	lines  []string
}

func newRecord(cfg Configuration) *record {
	return &record{
		cfg:    cfg,
		prefix: cfg.Prefix.Resolve(),
	}
}

// add appends one log line. Text spanning several physical lines is colored
// line by line so every physical line is closed by a reset.
func (r *record) add(text string) {
	line := r.prefix + text

	if !r.cfg.Color.IsZero() {
		parts := strings.Split(line, "\n")
		for i, part := range parts {
			parts[i] = r.cfg.Color.Wrap(part)
		}

		line = strings.Join(parts, "\n")
	}

	r.lines = append(r.lines, line)
}

func (r *record) addf(format string, args ...any) {
	r.add(fmt.Sprintf(format, args...))
}

// RenderRequest returns the verbose request section of ex.
// Compact and JSON records are rendered whole by RenderResponse.
func RenderRequest(cfg Configuration, ex *Exchange) []string {
	if !cfg.Enabled || cfg.Mode() != ModeVerbose {
		return nil
	}

	r := newRecord(cfg)

	if cfg.LogConnect && !ex.Connectionless {
		if hostPort := ex.HostPort(); hostPort != "" {
			r.add("Connecting: " + hostPort)
		}
	}

	if cfg.LogRequest {
		r.addf("Sending: %s %s", ex.method(), cfg.filterURL(ex.URL))
	}

	if cfg.LogHeaders {
		addHeaders(r, cfg.filterHeader(ex.RequestHeaders))
	}

	if cfg.LogData && len(ex.RequestBody) > 0 {
		r.add("Data: " + requestData(cfg, ex))
	}

	return r.lines
}

// RenderResponse returns the response part of ex: the verbose response
// section, or the single compact or JSON line.
func RenderResponse(cfg Configuration, ex *Exchange, body Body) []string {
	if !cfg.Enabled {
		return nil
	}

	r := newRecord(cfg)

	switch cfg.Mode() {
	case ModeJSON:
		renderJSON(r, ex, body)
	case ModeCompact:
		r.addf("%s %s completed with status code %d in %s",
			ex.method(), cfg.filterURL(ex.URL), ex.StatusCode, formatSeconds(ex.Elapsed))
	case ModeVerbose:
		renderVerboseResponse(r, ex, body)
	}

	return r.lines
}

// Render returns every line of ex in order.
func Render(cfg Configuration, ex *Exchange, body Body) []string {
	return append(RenderRequest(cfg, ex), RenderResponse(cfg, ex, body)...)
}

func renderVerboseResponse(r *record, ex *Exchange, body Body) {
	cfg := r.cfg

	if cfg.LogStatus && ex.StatusCode != 0 {
		r.addf("Status: %d", ex.StatusCode)
	}

	if cfg.LogBenchmark {
		r.add("Benchmark: " + formatSeconds(ex.Elapsed))
	}

	if cfg.LogHeaders {
		addHeaders(r, cfg.filterHeader(ex.ResponseHeaders))
	}

	if !cfg.LogResponse {
		return
	}

	if body.IsBinary() {
		r.add("Response: " + BinaryMarker)

		return
	}

	text := truncate(body.Text(), cfg.MaxBodyLength)

	if !cfg.PrefixResponseLines {
		if text == "" {
			r.add("Response:")
		} else {
			r.add("Response:\n" + text)
		}

		return
	}

	r.add("Response:")

	for i, line := range splitLines(text) {
		if cfg.PrefixLineNumbers {
			r.addf("%d: %s", i+1, line)
		} else {
			r.add(line)
		}
	}
}

func renderJSON(r *record, ex *Exchange, body Body) {
	cfg := r.cfg

	rec := jsonRecord{
		Method:          ex.method(),
		URL:             cfg.filterURL(ex.URL),
		RequestHeaders:  cfg.filterHeader(ex.RequestHeaders).Map(),
		ResponseCode:    ex.StatusCode,
		ResponseBody:    body.String(),
		ResponseHeaders: cfg.filterHeader(ex.ResponseHeaders).Map(),
		Benchmark:       roundSeconds(ex.Elapsed),
		Encoding:        ex.Encoding(),
		ContentType:     ex.MediaType(),
	}

	if !body.IsBinary() {
		rec.ResponseBody = truncate(rec.ResponseBody, cfg.MaxBodyLength)
	}

	if ex.RequestBody != nil {
		data := requestData(cfg, ex)
		rec.RequestBody = &data
	}

	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	// Every field is a string, number or string map, so encoding cannot fail.
	_ = encoder.Encode(rec)

	r.add(strings.TrimRight(buf.String(), "\n"))
}

func addHeaders(r *record, h Header) {
	for _, field := range h {
		r.addf("Header: %s: %s", field.Name, field.Value)
	}
}

// requestData renders the request body as text. Invalid UTF-8 is replaced
// rather than rejected: request data is shown even when it is not text.
func requestData(cfg Configuration, ex *Exchange) string {
	data := string(ex.RequestBody)
	if !utf8.ValidString(data) {
		data = strings.ToValidUTF8(data, string(utf8.RuneError))
	}

	data = cfg.filterData(data, ex.RequestHeaders.Get("Content-Type"))

	return truncate(data, cfg.MaxBodyLength)
}

// splitLines splits text on line breaks, dropping the empty line after a
// trailing break.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := lineBreakPattern.Split(text, -1)
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

// truncate cuts s to at most limit bytes on a rune boundary.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut] + truncatedSuffix
}

func roundSeconds(d time.Duration) float64 {
	const precision = 1e6

	return math.Round(d.Seconds()*precision) / precision
}

// formatSeconds renders d in seconds with at most six decimals and no exponent.
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(roundSeconds(d), 'f', -1, 64)
}
