package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/coverwallet/httplog/internal/config"
	"github.com/coverwallet/httplog/internal/httplog"
	"github.com/coverwallet/httplog/internal/logger"
	transport "github.com/coverwallet/httplog/internal/transport/http"
)

// RequestOptions describes the request sent to every URL.
type RequestOptions struct {
	// Method is the HTTP method. Empty means GET, or POST when Data is set.
	Method string
	// Data is the request body.
	Data string
	// Headers are "Name: value" pairs added to every request.
	Headers []string
	// Head sends HEAD requests regardless of Method.
	Head bool
}

// Static error definitions for better error handling.
var (
	// ErrInvalidHeader indicates that a header is not in "Name: value" form.
	ErrInvalidHeader = errors.New("header must be in 'Name: value' form")
	// ErrRequestsFailed indicates that at least one request could not be completed.
	ErrRequestsFailed = errors.New("requests failed")
)

// NewPipeline creates a pipeline logging with the validated settings of cfg.
// A nil sink writes through the process-wide logger.
func NewPipeline(cfg *config.Config, sink httplog.Sink) *httplog.Pipeline {
	settings := cfg.ToPipeline()

	store := httplog.NewStore()
	store.Update(func(c *httplog.Configuration) {
		*c = settings
	})

	return httplog.NewPipeline(store, sink)
}

// NewHTTPClient creates a client whose exchanges are logged by pipeline.
// Default headers, including the configured User-Agent, are injected before
// logging so the log shows what is actually sent.
func NewHTTPClient(cfg *config.Config, pipeline *httplog.Pipeline, headers http.Header) *http.Client {
	defaults := headers.Clone()
	if defaults == nil {
		defaults = make(http.Header)
	}

	if cfg.UserAgent != "" && defaults.Get("User-Agent") == "" {
		defaults.Set("User-Agent", cfg.UserAgent)
	}

	//nolint:forcetypeassert // DefaultTransport is always *http.Transport.
	base := http.DefaultTransport.(*http.Transport).Clone()

	return &http.Client{
		Transport: transport.NewHeaderInjector(
			transport.NewLogTransport(base, pipeline),
			transport.NewStaticHeaderProvider(defaults),
		),
		Timeout: cfg.ParsedTimeout,
	}
}

// ParseHeaders converts "Name: value" pairs into an http.Header.
func ParseHeaders(values []string) (http.Header, error) {
	headers := make(http.Header, len(values))

	for _, value := range values {
		name, content, found := strings.Cut(value, ":")

		name = strings.TrimSpace(name)
		if !found || name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidHeader, value)
		}

		headers.Add(name, strings.TrimSpace(content))
	}

	return headers, nil
}

// ExecuteRootCommand sends one request per URL through the logging client.
// Every URL is attempted; the returned error reports how many failed.
func ExecuteRootCommand(ctx context.Context, cfg *config.Config, opts RequestOptions, urls []string) error {
	headers, err := ParseHeaders(opts.Headers)
	if err != nil {
		return err
	}

	client := NewHTTPClient(cfg, NewPipeline(cfg, nil), headers)
	method := opts.method()

	var failed int

	for _, url := range urls {
		if err = sendRequest(ctx, client, method, url, opts.Data); err != nil {
			logger.Errorf(ctx, "Request to %s failed: %v", url, err)

			failed++
		}
	}

	logger.Infof(ctx, "Completed %d of %d requests", len(urls)-failed, len(urls))

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrRequestsFailed, failed, len(urls))
	}

	return nil
}

func (o RequestOptions) method() string {
	switch {
	case o.Head:
		return http.MethodHead
	case o.Method != "":
		return strings.ToUpper(o.Method)
	case o.Data != "":
		return http.MethodPost
	default:
		return http.MethodGet
	}
}

func sendRequest(ctx context.Context, client *http.Client, method, url, data string) error {
	var body io.Reader
	if data != "" {
		body = strings.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if data != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck // The body is fully consumed below.

	if _, err = io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	return nil
}
