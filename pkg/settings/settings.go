package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/dmitrymomot/mvc/pkg/cache"
	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/entity"
	"github.com/dmitrymomot/mvc/pkg/logger"
)

// GeneratedDescription is stored on rows created from a default value.
const GeneratedDescription = "Automaticly generated."

// Settings is the request-scoped settings accessor.
type Settings struct {
	table  entity.Settings
	shared cache.Cache[entity.Setting]
	log    *slog.Logger
	cached map[string]entity.Setting
	ttl    time.Duration
}

// Option configures Settings.
type Option func(*Settings)

// WithSharedCache adds a cache shared between requests in front of the table.
// Entries live for ttl; zero uses the cache default.
func WithSharedCache(c cache.Cache[entity.Setting], ttl time.Duration) Option {
	return func(s *Settings) {
		s.shared = c
		s.ttl = ttl
	}
}

// WithLogger sets the logger used for missing properties.
func WithLogger(l *slog.Logger) Option {
	return func(s *Settings) {
		if l != nil {
			s.log = l
		}
	}
}

// New binds a request-scoped accessor to the Settings table of gw.
func New(gw *db.Gateway, opts ...Option) *Settings {
	s := &Settings{
		table:  entity.NewSettings(gw),
		log:    logger.NewNope(),
		cached: make(map[string]entity.Setting),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value of property. When the row is missing and def is
// given, a row holding def[0] is created and def[0] is returned. Without a
// default a missing row is an ErrUnknownProperty.
func (s *Settings) Get(ctx context.Context, property string, def ...string) (string, error) {
	if st, ok := s.cached[property]; ok {
		return st.Value, nil
	}

	st, err := s.lookup(ctx, property)
	switch {
	case err == nil:
	case errors.Is(err, db.ErrNoRows):
		if len(def) == 0 {
			s.log.ErrorContext(ctx, "unknown setting requested", slog.String("property", property))
			return "", fmt.Errorf("%w: %q", ErrUnknownProperty, property)
		}
		if st, err = s.create(ctx, property, def[0]); err != nil {
			return "", err
		}
	default:
		return "", err
	}

	s.cached[property] = st
	return st.Value, nil
}

// Set updates an existing property and drops every cached copy of it.
// A property without a row is an ErrUnknownProperty and nothing is written.
func (s *Settings) Set(ctx context.Context, property, value string) error {
	if _, err := s.table.ByProperty(ctx, property); err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return fmt.Errorf("%w: %q", ErrUnknownProperty, property)
		}
		return err
	}

	if _, err := s.table.SetValue(ctx, property, value); err != nil {
		return err
	}

	delete(s.cached, property)
	if s.shared != nil {
		if err := s.shared.Delete(ctx, property); err != nil {
			s.log.WarnContext(ctx, "failed to invalidate shared setting",
				slog.String("property", property),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// Load fetches every listed property in one query and caches the rows.
// Rows that exist are cached even when others are missing; the missing
// names are reported with ErrPartialLoad.
func (s *Settings) Load(ctx context.Context, properties []string) error {
	wanted := slices.Compact(slices.Sorted(slices.Values(properties)))
	if len(wanted) == 0 {
		return nil
	}

	rows, err := s.table.ByProperties(ctx, wanted)
	if err != nil {
		return err
	}

	found := make(map[string]bool, len(rows))
	for _, st := range rows {
		s.cached[st.Property] = st
		found[st.Property] = true
		if s.shared != nil {
			_ = s.shared.Set(ctx, st.Property, st, s.ttl)
		}
	}

	if len(rows) == len(wanted) {
		return nil
	}

	var missing []string
	for _, p := range wanted {
		if !found[p] {
			missing = append(missing, p)
		}
	}
	s.log.ErrorContext(ctx, "failed to load settings",
		slog.Int("requested", len(wanted)),
		slog.Int("received", len(rows)),
		slog.Any("missing", missing),
	)
	return fmt.Errorf("%w: %v", ErrPartialLoad, missing)
}

// Int parses the value of property as a base 10 integer.
func (s *Settings) Int(ctx context.Context, property string, def ...int64) (int64, error) {
	v, err := s.Get(ctx, property, formatDefaults(def, func(d int64) string {
		return strconv.FormatInt(d, 10)
	})...)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer: %w", ErrInvalidValue, property, err)
	}
	return n, nil
}

// Duration reads an integer property as a number of seconds.
func (s *Settings) Duration(ctx context.Context, property string, def ...time.Duration) (time.Duration, error) {
	n, err := s.Int(ctx, property, formatDefaults(def, func(d time.Duration) int64 {
		return int64(d / time.Second)
	})...)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

// Bool reports whether the value of property is "1" or "true".
func (s *Settings) Bool(ctx context.Context, property string, def ...bool) (bool, error) {
	v, err := s.Get(ctx, property, formatDefaults(def, func(d bool) string {
		if d {
			return "1"
		}
		return "0"
	})...)
	if err != nil {
		return false, err
	}
	switch v {
	case "1", "true":
		return true, nil
	case "0", "false", "":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, property)
	}
}

func (s *Settings) lookup(ctx context.Context, property string) (entity.Setting, error) {
	if s.shared == nil {
		return s.table.ByProperty(ctx, property)
	}
	return cache.GetOrSet(ctx, s.shared, property, func(ctx context.Context) (entity.Setting, time.Duration, error) {
		st, err := s.table.ByProperty(ctx, property)
		return st, s.ttl, err
	})
}

func (s *Settings) create(ctx context.Context, property, value string) (entity.Setting, error) {
	st, err := s.table.Create(ctx, entity.Setting{
		Property:    property,
		Value:       value,
		Description: GeneratedDescription,
	})
	if err == nil {
		return st, nil
	}

	// Another request may have created the row first.
	if existing, lookupErr := s.table.ByProperty(ctx, property); lookupErr == nil {
		return existing, nil
	}
	return entity.Setting{}, err
}

func formatDefaults[T, U any](def []T, conv func(T) U) []U {
	if len(def) == 0 {
		return nil
	}
	return []U{conv(def[0])}
}
