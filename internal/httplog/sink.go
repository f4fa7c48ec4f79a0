package httplog

//go:generate $MOCKGEN -source=sink.go -destination=mocks/sink_mock.go

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coverwallet/httplog/internal/logger"
)

// Sink receives formatted log lines one at a time.
type Sink interface {
	// Log writes one line at the given level.
	Log(level zapcore.Level, line string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(level zapcore.Level, line string)

// Log calls f.
func (f SinkFunc) Log(level zapcore.Level, line string) {
	f(level, line)
}

// ZapSink writes lines through a zap logger.
type ZapSink struct {
	// logger is the destination, nil to use the process-wide logger at write time.
	logger *zap.Logger
}

// NewZapSink returns a sink writing to l, or to the process-wide logger when l is nil.
func NewZapSink(l *zap.Logger) *ZapSink {
	return &ZapSink{logger: l}
}

// Log writes line at level if the logger has it enabled.
func (s *ZapSink) Log(level zapcore.Level, line string) {
	l := s.logger
	if l == nil {
		l = logger.Logger()
	}

	if entry := l.Check(level, line); entry != nil {
		entry.Write()
	}
}
