package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Location selects where flushed request logs go.
type Location int

const (
	LocationVoid       Location = iota // discard
	LocationFile                       // append to a log file, only when an error was logged
	LocationConsole                    // colored group on a terminal
	LocationStore                      // Logs table, only when an error was logged
	LocationStructured                 // replay into the application slog logger
)

var locationNames = map[Location]string{
	LocationVoid:       "void",
	LocationFile:       "file",
	LocationConsole:    "console",
	LocationStore:      "store",
	LocationStructured: "structured",
}

func (l Location) String() string {
	if name, ok := locationNames[l]; ok {
		return name
	}
	return "Location(" + strconv.Itoa(int(l)) + ")"
}

// ParseLocation accepts a location name or its number.
func ParseLocation(s string) (Location, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for loc, name := range locationNames {
		if s == name || s == strconv.Itoa(int(loc)) {
			return loc, nil
		}
	}
	return LocationVoid, fmt.Errorf("%w: %q", ErrUnknownLocation, s)
}

// Sink receives a request log on flush.
type Sink interface {
	Write(ctx context.Context, r Report) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, r Report) error

func (f SinkFunc) Write(ctx context.Context, r Report) error { return f(ctx, r) }

// Void discards every report.
type Void struct{}

func (Void) Write(context.Context, Report) error { return nil }

// FileSink appends reports that contain an error to a file:
//
//	[IP:127.0.0.1 TIME:1700000000 USER_ID:3] BEGIN LOG:
//	...lines...
//	END LOG;
//
// Concurrent requests are serialized so blocks never interleave.
type FileSink struct {
	path string
	mu   sync.Mutex
}

// NewFileSink returns a sink appending to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Write(_ context.Context, r Report) error {
	if !r.HasErrors() {
		return nil
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "[IP:%s TIME:%d USER_ID:%d] BEGIN LOG:\n", r.ClientIP, r.Time.Unix(), r.UserID)
	for _, e := range r.Entries {
		buf.WriteString(e.Line)
		buf.WriteByte('\n')
	}
	buf.WriteString("END LOG;\n")

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	return f.Close()
}

// ConsoleSink prints each report as a colored group, one color per level.
type ConsoleSink struct {
	w     io.Writer
	title string
	mu    sync.Mutex
}

// NewConsoleSink writes to w, or stderr when w is nil.
func NewConsoleSink(w io.Writer, title string) *ConsoleSink {
	if w == nil {
		w = os.Stderr
	}
	if title == "" {
		title = "mvc server"
	}
	return &ConsoleSink{w: w, title: title}
}

var (
	groupColor = color.New(color.Bold)
	errorColor = color.New(color.FgRed)
	warnColor  = color.New(color.FgYellow)
	benchColor = color.New(color.FgCyan)
	debugColor = color.New(color.Faint)
)

func (s *ConsoleSink) Write(_ context.Context, r Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	header := s.title
	if r.RequestID != "" {
		header += " " + r.RequestID
	}
	if _, err := groupColor.Fprintln(s.w, "▼ "+header); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}

	for _, e := range r.Entries {
		c := debugColor
		switch {
		case e.Level >= slog.LevelError:
			c = errorColor
		case e.Level >= slog.LevelWarn:
			c = warnColor
		case e.Kind == KindBenchmark:
			c = benchColor
		case e.Level >= slog.LevelInfo:
			c = color.New(color.Reset)
		}
		if _, err := c.Fprintln(s.w, "  "+e.Line); err != nil {
			return fmt.Errorf("%w: %w", ErrSinkWrite, err)
		}
	}
	return nil
}

// ReportStore persists reports, typically in the Logs table.
type ReportStore interface {
	SaveReport(ctx context.Context, r Report) error
}

// StoreSink saves reports that contain an error.
type StoreSink struct {
	store ReportStore
}

// NewStoreSink returns a sink writing to store.
func NewStoreSink(store ReportStore) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Write(ctx context.Context, r Report) error {
	if !r.HasErrors() || s.store == nil {
		return nil
	}
	if err := s.store.SaveReport(ctx, r); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	return nil
}

// StructuredSink replays every line into an application logger, one record
// per entry at its original level, tagged with the request identity.
// Errors reach Sentry when the logger was built with one.
type StructuredSink struct {
	log *slog.Logger
}

// NewStructuredSink returns a sink replaying into log.
func NewStructuredSink(log *slog.Logger) *StructuredSink {
	if log == nil {
		log = NewNope()
	}
	return &StructuredSink{log: log}
}

func (s *StructuredSink) Write(ctx context.Context, r Report) error {
	log := s.log.With(
		slog.String("request_id", r.RequestID),
		slog.String("client_ip", r.ClientIP),
		slog.Int64("user_id", r.UserID),
	)
	for _, e := range r.Entries {
		log.Log(ctx, e.Level, e.Line)
	}
	return nil
}

// SinkConfig carries what NewSink needs for each location.
type SinkConfig struct {
	Writer   io.Writer
	Store    ReportStore
	Logger   *slog.Logger
	FilePath string
	Title    string
	Location Location
}

// NewSink builds the sink for cfg.Location.
func NewSink(cfg SinkConfig) (Sink, error) {
	switch cfg.Location {
	case LocationVoid:
		return Void{}, nil
	case LocationFile:
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("%w: file location needs a path", ErrInvalidSinkConfig)
		}
		return NewFileSink(cfg.FilePath), nil
	case LocationConsole:
		return NewConsoleSink(cfg.Writer, cfg.Title), nil
	case LocationStore:
		if cfg.Store == nil {
			return nil, fmt.Errorf("%w: store location needs a report store", ErrInvalidSinkConfig)
		}
		return NewStoreSink(cfg.Store), nil
	case LocationStructured:
		return NewStructuredSink(cfg.Logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocation, cfg.Location)
	}
}
