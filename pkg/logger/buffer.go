package logger

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// BufferOption configures a Buffer.
type BufferOption func(*bufferConfig)

type bufferConfig struct {
	now         func() time.Time
	probe       MemoryProbe
	debug       bool
	memory      bool
	memoryDelta bool
}

// WithDebug keeps debug and info records. Without it only warnings and
// errors are buffered, and Line is a no-op.
func WithDebug(enabled bool) BufferOption {
	return func(c *bufferConfig) { c.debug = enabled }
}

// WithMemoryUsage annotates every line with memory usage, either as the
// change since the previous line (delta) or as an absolute figure.
func WithMemoryUsage(enabled, delta bool) BufferOption {
	return func(c *bufferConfig) {
		c.memory = enabled
		c.memoryDelta = delta
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) BufferOption {
	return func(c *bufferConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMemoryProbe replaces HeapInUse.
func WithMemoryProbe(probe MemoryProbe) BufferOption {
	return func(c *bufferConfig) {
		if probe != nil {
			c.probe = probe
		}
	}
}

type mark struct {
	at  time.Time
	mem uint64
}

// bufferState is shared by a Buffer and every handler derived from it.
type bufferState struct {
	start   time.Time
	marks   map[string]mark
	cfg     bufferConfig
	entries []Entry
	lastMem uint64
	mu      sync.Mutex
	level   slog.Level
	flushed bool
}

// Buffer is the per-request log. It is a slog.Handler: every kept record
// becomes one line
//
//	[     gateway.go:123] (12.34 ms) (+4.1 KiB) message key=value
//
// carrying the caller, the time since the buffer was created and the
// memory delta since the previous line. Nothing is written anywhere until
// Flush hands the lines to a Sink.
type Buffer struct {
	state  *bufferState
	attrs  string
	prefix string
}

// NewBuffer starts a request log. The elapsed-time origin is now.
func NewBuffer(opts ...BufferOption) *Buffer {
	cfg := bufferConfig{
		now:         time.Now,
		probe:       HeapInUse,
		memory:      true,
		memoryDelta: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Buffer{state: &bufferState{
		cfg:     cfg,
		start:   cfg.now(),
		marks:   make(map[string]mark),
		lastMem: cfg.probe(),
		level:   slog.LevelDebug,
	}}
}

// Logger returns a slog.Logger writing into the buffer.
func (b *Buffer) Logger() *slog.Logger {
	return slog.New(b)
}

func (b *Buffer) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn || b.state.cfg.debug
}

func (b *Buffer) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Message)
	sb.WriteString(b.attrs)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, b.prefix, a)
		return true
	})

	b.state.record(r.Level, KindRecord, r.PC, sb.String())
	return nil
}

func (b *Buffer) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	sb.WriteString(b.attrs)
	for _, a := range attrs {
		writeAttr(&sb, b.prefix, a)
	}
	return &Buffer{state: b.state, attrs: sb.String(), prefix: b.prefix}
}

func (b *Buffer) WithGroup(name string) slog.Handler {
	if name == "" {
		return b
	}
	return &Buffer{state: b.state, attrs: b.attrs, prefix: b.prefix + name + "."}
}

// Line appends text verbatim, without caller or timing. Dropped unless debug is on.
func (b *Buffer) Line(text string) {
	s := b.state
	if !s.cfg.debug {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Entry{
		Time:  s.cfg.now(),
		Line:  text,
		Level: slog.LevelDebug,
		Kind:  KindRaw,
	})
}

// Benchmark measures the code between two calls with the same id.
// The first call sets a mark; the second appends
//
//	[Benchmark] (+1.2 KiB) (0.42 ms) text
//
// and discards the mark, so the id can be reused.
func (b *Buffer) Benchmark(id string, text ...string) {
	s := b.state

	s.mu.Lock()
	m, ok := s.marks[id]
	if !ok {
		s.marks[id] = mark{at: s.cfg.now(), mem: s.cfg.probe()}
		s.mu.Unlock()
		return
	}
	delete(s.marks, id)
	delta := int64(s.cfg.probe()) - int64(m.mem)
	elapsed := s.cfg.now().Sub(m.at)
	s.mu.Unlock()

	var pcs [1]uintptr
	runtime.Callers(2, pcs[:])

	line := "[Benchmark] (" + signedBytes(delta) + ") (" + millis(elapsed) + ") " + strings.Join(text, " ")
	s.record(slog.LevelInfo, KindBenchmark, pcs[0], line)
}

// Level returns the highest severity recorded so far.
func (b *Buffer) Level() slog.Level {
	b.state.mu.Lock()
	defer b.state.mu.Unlock()
	return b.state.level
}

// Entries returns a copy of the buffered lines.
func (b *Buffer) Entries() []Entry {
	b.state.mu.Lock()
	defer b.state.mu.Unlock()
	return slices.Clone(b.state.entries)
}

// Flush hands the buffered lines to sink. It runs once per buffer; later
// calls return ErrFlushed. An empty buffer or a nil sink writes nothing.
func (b *Buffer) Flush(ctx context.Context, sink Sink, meta Meta) error {
	s := b.state

	s.mu.Lock()
	if s.flushed {
		s.mu.Unlock()
		return ErrFlushed
	}
	s.flushed = true
	report := Report{
		Time:    s.cfg.now(),
		Meta:    meta,
		Entries: slices.Clone(s.entries),
		Level:   s.level,
	}
	s.mu.Unlock()

	if len(report.Entries) == 0 || sink == nil {
		return nil
	}
	return sink.Write(ctx, report)
}

func (s *bufferState) record(level slog.Level, kind Kind, pc uintptr, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.cfg.now()

	var sb strings.Builder
	sb.WriteString(callerPrefix(pc))
	sb.WriteString("(" + millis(now.Sub(s.start)) + ") ")
	if s.cfg.memory {
		sb.WriteString("(" + s.memory() + ") ")
	}
	sb.WriteString(text)

	s.entries = append(s.entries, Entry{Time: now, Line: sb.String(), Level: level, Kind: kind})
	if kind == KindRecord && level > s.level {
		s.level = level
	}
}

// memory must be called with mu held.
func (s *bufferState) memory() string {
	cur := s.cfg.probe()
	if !s.cfg.memoryDelta {
		return humanize.IBytes(cur)
	}
	delta := int64(cur) - int64(s.lastMem)
	s.lastMem = cur
	return signedBytes(delta)
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(sb, p, ga)
		}
		return
	}

	val := a.Value.String()
	if val == "" || strings.ContainsAny(val, " \t\n\"=") {
		val = strconv.Quote(val)
	}
	sb.WriteString(" " + prefix + a.Key + "=" + val)
}
