package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/mvc/pkg/cache"
	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/sweeper"
)

// Format names a configuration file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Components the dispatcher knows how to build.
var knownComponents = []string{"settings", "auth", "pagecache"}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads, decodes and validates the file at path.
func Load(path string) (Config, error) {
	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".toml":
		format = FormatTOML
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Join(ErrRead, err)
	}

	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes data on top of Defaults after expanding ${VAR} references.
// It does not validate.
func Parse(data []byte, format Format) (Config, error) {
	expanded := ExpandEnv(string(data))
	cfg := Defaults()

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return Config{}, errors.Join(ErrParse, err)
		}
	case FormatTOML:
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return Config{}, errors.Join(ErrParse, err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return cfg, nil
}

// ExpandEnv replaces ${VAR} with the environment value, or nothing when unset.
func ExpandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envPattern.FindStringSubmatch(match)[1])
	})
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Router.DefaultController == "" {
		add("router.default_controller is required")
	}
	if c.Router.DefaultMethod == "" {
		add("router.default_method is required")
	}
	for i, f := range c.Router.Forwarders {
		if _, err := regexp.Compile(f.Pattern); err != nil {
			add("router.forwarders[%d]: %w", i, err)
		}
	}

	loc, err := c.LogLocation()
	if err != nil {
		add("log.location: %w", err)
	}
	if loc.String() == "file" && c.Log.File == "" {
		add("log.file is required for the file location")
	}

	for name, d := range c.Databases {
		switch d.Driver {
		case "", db.DriverSQLite, db.DriverPostgres, "pgx":
		default:
			add("databases.%s.driver: unsupported driver %q", name, d.Driver)
		}
		if d.DSN == "" {
			add("databases.%s.dsn is required", name)
		}
	}

	for _, comp := range c.Components {
		if !slices.Contains(knownComponents, comp) {
			add("components: unknown component %q", comp)
		}
	}
	needsDB := slices.Contains(c.Components, "settings") || slices.Contains(c.Components, "auth") ||
		loc.String() == "store" || c.Sweeper.Enabled
	if _, ok := c.Databases[db.DefaultName]; needsDB && !ok {
		add("databases.%s is required by the configured components", db.DefaultName)
	}
	if slices.Contains(c.Components, "auth") && !slices.Contains(c.Components, "settings") {
		add("components: auth requires settings")
	}

	switch c.Cache.Backend {
	case "", cache.BackendMemory:
	case cache.BackendRedis:
		if c.Redis.URL == "" {
			add("redis.url is required for the redis cache backend")
		}
	default:
		add("cache.backend: unknown backend %q", c.Cache.Backend)
	}

	if c.Sweeper.Enabled {
		if _, err := sweeper.ParseSchedule(c.Sweeper.Schedule); err != nil {
			add("sweeper.schedule: %w", err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalid}, errs...)...)
}
