package httplog

import (
	"regexp"
	"slices"

	"go.uber.org/zap/zapcore"
)

// DefaultPrefix is the literal prefix of every line unless configured otherwise.
const DefaultPrefix = "[httplog] "

// Mode is the rendering mode of a record.
type Mode int

const (
	// ModeVerbose renders one line per section.
	ModeVerbose Mode = iota
	// ModeCompact renders a single summary line.
	ModeCompact
	// ModeJSON renders a single JSON object.
	ModeJSON
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeVerbose:
		return "verbose"
	case ModeCompact:
		return "compact"
	case ModeJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Prefix is either a literal string or a function computing the prefix.
// The zero value is an empty literal.
type Prefix struct {
	// literal is returned when fn is nil.
	literal string
	// fn computes the prefix for each record.
	fn func() string
}

// LiteralPrefix returns a prefix that always resolves to s.
func LiteralPrefix(s string) Prefix {
	return Prefix{literal: s}
}

// DynamicPrefix returns a prefix computed by fn once per record.
// A nil fn resolves to an empty prefix.
func DynamicPrefix(fn func() string) Prefix {
	return Prefix{fn: fn}
}

// Resolve returns the prefix text for one record.
func (p Prefix) Resolve() string {
	if p.fn != nil {
		return p.fn()
	}

	return p.literal
}

// IsDynamic reports whether the prefix is computed by a function.
func (p Prefix) IsDynamic() bool {
	return p.fn != nil
}

// Configuration controls what the pipeline logs and how.
type Configuration struct {
	// Enabled is the master switch. When false nothing is logged.
	Enabled bool
	// LogConnect toggles the verbose "Connecting:" line.
	LogConnect bool
	// LogRequest toggles the verbose "Sending:" line.
	LogRequest bool
	// LogHeaders toggles the verbose "Header:" lines of both request and response.
	LogHeaders bool
	// LogData toggles the verbose "Data:" line.
	LogData bool
	// LogStatus toggles the verbose "Status:" line.
	LogStatus bool
	// LogBenchmark toggles the verbose "Benchmark:" line.
	LogBenchmark bool
	// LogResponse toggles the verbose "Response:" section.
	LogResponse bool
	// CompactLog switches to a single summary line per exchange.
	CompactLog bool
	// JSONLog switches to a single JSON object per exchange. It wins over CompactLog.
	JSONLog bool
	// Severity is the level every line is emitted at.
	Severity zapcore.Level
	// Prefix is prepended to every line.
	Prefix Prefix
	// PrefixResponseLines emits every response body line as its own prefixed line.
	PrefixResponseLines bool
	// PrefixLineNumbers numbers prefixed response body lines starting at 1.
	PrefixLineNumbers bool
	// Color wraps every line in ANSI escapes when set.
	Color Color
	// URLWhitelistPattern, when set, must match a URL for it to be logged.
	URLWhitelistPattern *regexp.Regexp
	// URLBlacklistPattern, when set and matching, prevents a URL from being logged.
	URLBlacklistPattern *regexp.Regexp
	// FilterParameters lists parameter and header names whose values are masked.
	FilterParameters []string
	// MaxBodyLength truncates rendered bodies longer than this many bytes. Zero means unlimited.
	MaxBodyLength int
}

// DefaultConfiguration returns the configuration every Store starts with.
func DefaultConfiguration() Configuration {
	return Configuration{
		Enabled:      true,
		LogConnect:   true,
		LogRequest:   true,
		LogData:      true,
		LogStatus:    true,
		LogBenchmark: true,
		LogResponse:  true,
		Severity:     zapcore.DebugLevel,
		Prefix:       LiteralPrefix(DefaultPrefix),
	}
}

// Mode resolves the rendering mode. JSON takes precedence over compact,
// compact over verbose.
func (c Configuration) Mode() Mode {
	switch {
	case c.JSONLog:
		return ModeJSON
	case c.CompactLog:
		return ModeCompact
	default:
		return ModeVerbose
	}
}

// clone returns a copy that shares no mutable state with c.
func (c Configuration) clone() Configuration {
	c.FilterParameters = slices.Clone(c.FilterParameters)

	return c
}
