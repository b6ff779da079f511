package logger

import (
	"log/slog"
	"time"
)

// Kind tells how an entry was produced.
type Kind uint8

const (
	KindRecord    Kind = iota // slog record with caller, elapsed time and memory delta
	KindRaw                   // text appended verbatim by Line
	KindBenchmark             // closing half of a Benchmark pair
)

// Entry is one rendered line of a request log.
type Entry struct {
	Time  time.Time
	Line  string
	Level slog.Level
	Kind  Kind
}

// Meta identifies the request a log belongs to.
type Meta struct {
	RequestID string
	ClientIP  string
	UserID    int64
}

// Report is what a sink receives on flush.
// Level is the highest severity recorded; benchmarks and raw lines do not raise it.
type Report struct {
	Time    time.Time
	Meta
	Entries []Entry
	Level   slog.Level
}

// HasErrors reports whether an error was logged.
func (r Report) HasErrors() bool {
	return r.Level >= slog.LevelError
}

// Lines returns the rendered lines in order.
func (r Report) Lines() []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Line
	}
	return out
}
