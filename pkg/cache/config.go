package cache

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and tunes a backend.
type Config struct {
	Backend    string        `yaml:"backend" toml:"backend"`
	Prefix     string        `yaml:"prefix" toml:"prefix"`
	DefaultTTL time.Duration `yaml:"default_ttl" toml:"default_ttl"`
	MaxEntries int           `yaml:"max_entries" toml:"max_entries"`
}

// New builds the backend named by cfg.Backend; empty means memory.
// The redis backend needs client.
func New[V any](cfg Config, client redis.UniversalClient, m Marshaler[V]) (Cache[V], error) {
	switch cfg.Backend {
	case "", BackendMemory:
		opts := []MemoryOption{WithMaxEntries(cfg.MaxEntries)}
		if cfg.DefaultTTL != 0 {
			opts = append(opts, WithDefaultTTL(cfg.DefaultTTL))
		}
		return NewMemory[V](opts...), nil
	case BackendRedis:
		if client == nil {
			return nil, ErrNoRedisClient
		}
		return NewRedis(client, m, cfg.Prefix, cfg.DefaultTTL), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
