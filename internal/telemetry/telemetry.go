// Package telemetry implements an async structured logger for the
// indexing engine: a handful of named loggers fed through a buffered
// channel by a single background goroutine, so a caller's indexing or
// query path never blocks on log I/O.
package telemetry

import (
	"io"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
)

// entry is one queued log line.
type entry struct {
	logger string
	level  zerolog.Level
	fields map[string]interface{}
	msg    string
}

// Logger is the engine's async logger. The zero value is not usable;
// construct one with New.
type Logger struct {
	queue   chan entry
	dropped uint64
	logs    map[string]zerolog.Logger
}

// New creates a Logger writing to w (os.Stderr if w is nil) and starts
// its draining goroutine. debug sets zerolog's process-wide global level
// to Debug, otherwise to Info: Debug-level events are always queued, and
// zerolog discards them when debug is false.
func New(w io.Writer, debug bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	base := zerolog.New(w).With().Timestamp().Logger()
	l := &Logger{
		queue: make(chan entry, 1024),
		logs: map[string]zerolog.Logger{
			"index":  base.With().Str("component", "indexer").Logger(),
			"query":  base.With().Str("component", "query").Logger(),
			"store":  base.With().Str("component", "store").Logger(),
			"cache":  base.With().Str("component", "cache").Logger(),
			"perf":   base.With().Str("component", "perf").Logger(),
		},
	}
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	go l.drain()
	return l
}

func (l *Logger) drain() {
	for e := range l.queue {
		lg, ok := l.logs[e.logger]
		if !ok {
			lg = l.logs["index"]
		}
		ev := lg.WithLevel(e.level)
		for k, v := range e.fields {
			ev = ev.Interface(k, v)
		}
		ev.Msg(e.msg)
	}
}

func (l *Logger) enqueue(e entry) {
	select {
	case l.queue <- e:
	default:
		// a full queue never applies backpressure to the caller's
		// indexing or query path; the line is dropped and counted.
		l.dropped++
	}
}

// Dropped returns the number of log lines dropped because the queue was
// full.
func (l *Logger) Dropped() uint64 { return l.dropped }

// Info logs an informational event on the named logger ("index",
// "query", "store", "cache", "perf").
func (l *Logger) Info(logger, msg string, fields map[string]interface{}) {
	l.enqueue(entry{logger: logger, level: zerolog.InfoLevel, msg: msg, fields: fields})
}

// Debug logs a debug event.
func (l *Logger) Debug(logger, msg string, fields map[string]interface{}) {
	l.enqueue(entry{logger: logger, level: zerolog.DebugLevel, msg: msg, fields: fields})
}

// Warn logs a warning event, used for recoverable conditions like a
// lenient-mode geometry violation.
func (l *Logger) Warn(logger, msg string, fields map[string]interface{}) {
	l.enqueue(entry{logger: logger, level: zerolog.WarnLevel, msg: msg, fields: fields})
}

// Error logs an error event.
func (l *Logger) Error(logger, msg string, fields map[string]interface{}) {
	l.enqueue(entry{logger: logger, level: zerolog.ErrorLevel, msg: msg, fields: fields})
}

// Perf logs a performance measurement under the "perf" logger.
func (l *Logger) Perf(msg string, elapsed time.Duration, fields map[string]interface{}) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["elapsed_ms"] = elapsed.Milliseconds()
	l.enqueue(entry{logger: "perf", level: zerolog.InfoLevel, msg: msg, fields: fields})
}

// DumpDebug logs a full structure dump of v at debug level, for the
// kind of "what did we actually resolve this to" diagnostics that a
// one-line field doesn't capture (resolved config, a registry's
// contents, a descriptor). Costs a spew.Sdump call, so only meaningful
// when the caller has already gated on debug mode.
func (l *Logger) DumpDebug(logger, msg string, v interface{}) {
	l.enqueue(entry{logger: logger, level: zerolog.DebugLevel, msg: msg, fields: map[string]interface{}{
		"dump": spew.Sdump(v),
	}})
}

// Discard returns a Logger that drops everything; used as the default
// when a caller does not configure logging.
func Discard() *Logger {
	l := New(io.Discard, false)
	return l
}
