package logger_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/pkg/logger"
)

// fakeEnv drives the buffer clock and memory probe by hand.
type fakeEnv struct {
	mu  sync.Mutex
	now time.Time
	mem uint64
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{now: time.Unix(1_700_000_000, 0), mem: 1 << 20}
}

func (e *fakeEnv) Now() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

func (e *fakeEnv) Mem() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mem
}

func (e *fakeEnv) advance(d time.Duration, mem int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = e.now.Add(d)
	e.mem = uint64(int64(e.mem) + mem)
}

func (e *fakeEnv) buffer(opts ...logger.BufferOption) *logger.Buffer {
	return logger.NewBuffer(append([]logger.BufferOption{
		logger.WithClock(e.Now),
		logger.WithMemoryProbe(e.Mem),
	}, opts...)...)
}

type captureSink struct {
	reports []logger.Report
}

func (s *captureSink) Write(_ context.Context, r logger.Report) error {
	s.reports = append(s.reports, r)
	return nil
}

func TestBuffer(t *testing.T) {
	t.Parallel()

	t.Run("line carries caller, elapsed time and memory delta", func(t *testing.T) {
		t.Parallel()

		env := newFakeEnv()
		buf := env.buffer(logger.WithDebug(true))

		env.advance(1500*time.Microsecond, 2048)
		buf.Logger().Info("hello", "user", "bob")

		entries := buf.Entries()
		require.Len(t, entries, 1)
		line := entries[0].Line
		assert.Contains(t, line, "buffer_test.go:")
		assert.Contains(t, line, "(1.50 ms) (+2.0 KiB) hello user=bob")
		assert.Equal(t, logger.KindRecord, entries[0].Kind)
		assert.Equal(t, slog.LevelInfo, entries[0].Level)
	})

	t.Run("memory delta is relative to the previous line", func(t *testing.T) {
		t.Parallel()

		env := newFakeEnv()
		buf := env.buffer(logger.WithDebug(true))
		log := buf.Logger()

		env.advance(time.Millisecond, 4096)
		log.Debug("first")
		env.advance(time.Millisecond, -1024)
		log.Debug("second")

		entries := buf.Entries()
		require.Len(t, entries, 2)
		assert.Contains(t, entries[0].Line, "(+4.0 KiB) first")
		assert.Contains(t, entries[1].Line, "(-1.0 KiB) second")
	})

	t.Run("absolute memory usage", func(t *testing.T) {
		t.Parallel()

		env := newFakeEnv()
		buf := env.buffer(logger.WithDebug(true), logger.WithMemoryUsage(true, false))
		buf.Logger().Info("abs")

		entries := buf.Entries()
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Line, "(1.0 MiB) abs")
	})

	t.Run("memory usage disabled", func(t *testing.T) {
		t.Parallel()

		env := newFakeEnv()
		buf := env.buffer(logger.WithDebug(true), logger.WithMemoryUsage(false, false))
		buf.Logger().Info("plain")

		entries := buf.Entries()
		require.Len(t, entries, 1)
		assert.NotContains(t, entries[0].Line, "iB")
		assert.Contains(t, entries[0].Line, "ms) plain")
	})

	t.Run("without debug only warnings and errors are kept", func(t *testing.T) {
		t.Parallel()

		env := newFakeEnv()
		buf := env.buffer()
		log := buf.Logger()

		log.Debug("dropped")
		log.Info("dropped")
		buf.Line("dropped")
		log.Warn("kept")

		entries := buf.Entries()
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Line, "kept")
	})

	t.Run("raw lines are verbatim", func(t *testing.T) {
		t.Parallel()

		env := newFakeEnv()
		buf := env.buffer(logger.WithDebug(true))
		buf.Line("---- raw ----")

		entries := buf.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "---- raw ----", entries[0].Line)
		assert.Equal(t, logger.KindRaw, entries[0].Kind)
	})

	t.Run("attrs and groups", func(t *testing.T) {
		t.Parallel()

		env := newFakeEnv()
		buf := env.buffer(logger.WithDebug(true))
		buf.Logger().With("a", 1).WithGroup("g").Info("msg", "b", 2, "text", "two words")

		entries := buf.Entries()
		require.Len(t, entries, 1)
		assert.True(t, strings.HasSuffix(entries[0].Line, `msg a=1 g.b=2 g.text="two words"`), entries[0].Line)
	})

	t.Run("level tracks the highest record", func(t *testing.T) {
		t.Parallel()

		env := newFakeEnv()
		buf := env.buffer(logger.WithDebug(true))
		log := buf.Logger()

		assert.Equal(t, slog.LevelDebug, buf.Level())
		log.Warn("w")
		assert.Equal(t, slog.LevelWarn, buf.Level())
		log.Error("e")
		log.Info("i")
		assert.Equal(t, slog.LevelError, buf.Level())
	})
}

// --- Benchmark ---

func TestBufferBenchmark(t *testing.T) {
	t.Parallel()

	t.Run("pair produces one line", func(t *testing.T) {
		t.Parallel()

		env := newFakeEnv()
		buf := env.buffer()

		buf.Benchmark("query_1")
		assert.Empty(t, buf.Entries())

		env.advance(2*time.Millisecond, 1024)
		buf.Benchmark("query_1", "SELECT 1")

		entries := buf.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, logger.KindBenchmark, entries[0].Kind)
		assert.Contains(t, entries[0].Line, "[Benchmark] (+1.0 KiB) (2.00 ms) SELECT 1")
		assert.Contains(t, entries[0].Line, "buffer_test.go:")
	})

	t.Run("id can be reused after closing", func(t *testing.T) {
		t.Parallel()

		env := newFakeEnv()
		buf := env.buffer()

		buf.Benchmark("x")
		buf.Benchmark("x", "one")
		buf.Benchmark("x")
		buf.Benchmark("x", "two")

		assert.Len(t, buf.Entries(), 2)
	})

	t.Run("does not raise the level", func(t *testing.T) {
		t.Parallel()

		env := newFakeEnv()
		buf := env.buffer()
		buf.Benchmark("x")
		buf.Benchmark("x")

		assert.Equal(t, slog.LevelDebug, buf.Level())
	})
}

// --- Flush ---

func TestBufferFlush(t *testing.T) {
	t.Parallel()

	t.Run("hands a report to the sink once", func(t *testing.T) {
		t.Parallel()

		env := newFakeEnv()
		buf := env.buffer()
		buf.Logger().Error("boom")

		sink := &captureSink{}
		meta := logger.Meta{RequestID: "req-1", ClientIP: "10.0.0.1", UserID: 7}
		require.NoError(t, buf.Flush(context.Background(), sink, meta))

		require.Len(t, sink.reports, 1)
		r := sink.reports[0]
		assert.Equal(t, meta, r.Meta)
		assert.True(t, r.HasErrors())
		assert.Len(t, r.Lines(), 1)

		err := buf.Flush(context.Background(), sink, meta)
		assert.True(t, errors.Is(err, logger.ErrFlushed))
		assert.Len(t, sink.reports, 1)
	})

	t.Run("empty buffer writes nothing", func(t *testing.T) {
		t.Parallel()

		env := newFakeEnv()
		buf := env.buffer()
		sink := &captureSink{}

		require.NoError(t, buf.Flush(context.Background(), sink, logger.Meta{}))
		assert.Empty(t, sink.reports)
	})

	t.Run("nil sink", func(t *testing.T) {
		t.Parallel()

		env := newFakeEnv()
		buf := env.buffer()
		buf.Logger().Warn("w")

		assert.NoError(t, buf.Flush(context.Background(), nil, logger.Meta{}))
	})
}
