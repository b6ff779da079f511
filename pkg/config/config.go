package config

import (
	"time"

	"github.com/dmitrymomot/mvc/pkg/cache"
	"github.com/dmitrymomot/mvc/pkg/cookie"
	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/logger"
	"github.com/dmitrymomot/mvc/pkg/redis"
)

// Config is the whole framework configuration.
type Config struct {
	Databases map[string]db.Config `yaml:"databases" toml:"databases"`
	Redis     redis.Config         `yaml:"redis" toml:"redis"`
	Cookie    cookie.Config        `yaml:"cookie" toml:"cookie"`
	Logger    logger.Config        `yaml:"logger" toml:"logger"`
	Cache     cache.Config         `yaml:"cache" toml:"cache"`
	Server    ServerConfig         `yaml:"server" toml:"server"`
	Router    RouterConfig         `yaml:"router" toml:"router"`
	Log       LogConfig            `yaml:"log" toml:"log"`
	Sweeper   SweeperConfig        `yaml:"sweeper" toml:"sweeper"`

	Title     string `yaml:"title" toml:"title"`
	BaseURL   string `yaml:"base_url" toml:"base_url"`
	AssetsURL string `yaml:"assets_url" toml:"assets_url"`

	// Components lists the request components in construction order:
	// "settings", "auth", "pagecache".
	Components []string `yaml:"components" toml:"components"`

	// SettingsAutoload is preloaded by the settings component on every request.
	SettingsAutoload []string `yaml:"settings_autoload" toml:"settings_autoload"`

	// CacheOutput turns on the page cache component.
	CacheOutput bool `yaml:"cache_output" toml:"cache_output"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr" toml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	// Release discards partially rendered output when a request fails.
	Release        bool `yaml:"release" toml:"release"`
	CompressOutput bool `yaml:"compress_output" toml:"compress_output"`
	Metrics        bool `yaml:"metrics" toml:"metrics"`
}

// RouterConfig holds route resolution defaults and path forwarders.
type RouterConfig struct {
	DefaultController string      `yaml:"default_controller" toml:"default_controller"`
	DefaultMethod     string      `yaml:"default_method" toml:"default_method"`
	Forwarders        []Forwarder `yaml:"forwarders" toml:"forwarders"`
}

// Forwarder rewrites a request path before it is parsed.
// Replacement may reference groups as $1 or ${name}.
type Forwarder struct {
	Pattern     string `yaml:"pattern" toml:"pattern"`
	Replacement string `yaml:"replacement" toml:"replacement"`
}

// LogConfig configures the per-request log.
type LogConfig struct {
	// Location is void, file, console, store or structured (or 0 to 4).
	Location    string `yaml:"location" toml:"location"`
	File        string `yaml:"file" toml:"file"`
	Debug       bool   `yaml:"debug" toml:"debug"`
	SQLQueries  bool   `yaml:"sql_queries" toml:"sql_queries"`
	MemoryUsage bool   `yaml:"memory_usage" toml:"memory_usage"`
	MemoryDelta bool   `yaml:"memory_delta" toml:"memory_delta"`
}

// SweeperConfig schedules removal of expired sessions.
type SweeperConfig struct {
	// Schedule is a cron spec, e.g. "@every 10m" or "0 */6 * * *".
	Schedule string `yaml:"schedule" toml:"schedule"`
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
}

// Defaults returns the configuration used for keys a file leaves out.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 30 * time.Second,
			CompressOutput:  true,
		},
		Router: RouterConfig{
			DefaultController: "Index",
			DefaultMethod:     "default_index",
		},
		Log: LogConfig{
			Location:    logger.LocationFile.String(),
			File:        "error.log",
			Debug:       true,
			SQLQueries:  true,
			MemoryUsage: true,
			MemoryDelta: true,
		},
		Logger:     logger.Config{Level: "info", Format: "json"},
		Cache:      cache.Config{Backend: cache.BackendMemory},
		Sweeper:    SweeperConfig{Schedule: "@every 10m"},
		Components: []string{"settings", "auth"},
		SettingsAutoload: []string{
			"core.view.default",
			"core.user.session_max_time",
			"core.user.session_verify_user_agent",
		},
	}
}

// LogLocation parses Log.Location.
func (c Config) LogLocation() (logger.Location, error) {
	return logger.ParseLocation(c.Log.Location)
}
