package httplog

import (
	"context"

	"github.com/coverwallet/httplog/internal/logger"
)

// Pipeline connects adapters to the configuration, decoder, renderer and sink.
// It is safe for concurrent use by multiple adapters.
type Pipeline struct {
	// store provides a configuration snapshot for every call.
	store *Store
	// sink receives every rendered line.
	sink Sink
}

// NewPipeline creates a pipeline. A nil store uses DefaultStore, a nil sink
// writes through the process-wide logger.
func NewPipeline(store *Store, sink Sink) *Pipeline {
	if store == nil {
		store = DefaultStore()
	}

	if sink == nil {
		sink = NewZapSink(nil)
	}

	return &Pipeline{
		store: store,
		sink:  sink,
	}
}

// Store returns the configuration store of the pipeline.
func (p *Pipeline) Store() *Store {
	return p.store
}

// Approved reports whether an adapter should capture the exchange for url.
// It is false when logging is disabled or the URL filter rejects url.
func (p *Pipeline) Approved(url string) bool {
	cfg := p.store.Get()

	return cfg.Enabled && cfg.IsApproved(url)
}

// Begin logs the request section of ex. Call it before the request is sent.
func (p *Pipeline) Begin(ex *Exchange) {
	p.safely(func() {
		cfg := p.store.Get()
		p.emit(cfg, RenderRequest(cfg, ex))
	})
}

// Complete decodes the response of ex and logs the rest of the record.
func (p *Pipeline) Complete(ex *Exchange) {
	p.safely(func() {
		cfg := p.store.Get()
		if !cfg.Enabled {
			return
		}

		var body Body
		if needsBody(cfg) {
			body = Decode(ex.ResponseBody, DecodeOptions{
				ContentEncoding: ex.Encoding(),
				ContentType:     ex.MediaType(),
				SkipBody:        ex.SkipBody,
			})
		}

		p.emit(cfg, RenderResponse(cfg, ex, body))
	})
}

// Log logs a fully captured exchange.
func (p *Pipeline) Log(ex *Exchange) {
	p.Begin(ex)
	p.Complete(ex)
}

func (p *Pipeline) emit(cfg Configuration, lines []string) {
	for _, line := range lines {
		p.sink.Log(cfg.Severity, line)
	}
}

// safely runs fn and swallows any panic so logging never breaks the request.
func (p *Pipeline) safely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warnf(context.Background(), "httplog: failed to log exchange: %v", r)
		}
	}()

	fn()
}

func needsBody(cfg Configuration) bool {
	switch cfg.Mode() {
	case ModeJSON:
		return true
	case ModeVerbose:
		return cfg.LogResponse
	default:
		return false
	}
}
