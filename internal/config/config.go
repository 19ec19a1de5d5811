package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends understood by the CLI.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// DefaultStorageKey is the record key progress is persisted under.
const DefaultStorageKey = "quizProgress"

type Config struct {
	Env string `mapstructure:"env"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Storage struct {
		Backend string `mapstructure:"backend"`
		Key     string `mapstructure:"key"`
		// Path is the data directory for the file backend and the database file for sqlite.
		Path string `mapstructure:"path"`
	} `mapstructure:"storage"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
		TTL      string `mapstructure:"ttl"`
	} `mapstructure:"redis"`
	Postgres struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"postgres"`
	Questions struct {
		// Path points at a YAML question bank; empty uses the built-in bank.
		Path string `mapstructure:"path"`
		TTL  string `mapstructure:"ttl"`
	} `mapstructure:"questions"`
}

// Load reads YAML config from path, overlaid with QUIZ_* environment variables.
// A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("env", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.port", "8080")
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.key", DefaultStorageKey)
	v.SetDefault("storage.path", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "0s")
	v.SetDefault("postgres.url", "")
	v.SetDefault("questions.path", "")
	v.SetDefault("questions.ttl", "10m")

	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Config{}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := v.ReadInConfig(); err != nil {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("stat config: %w", err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the backend selection has what it needs.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("storage backend %q requires redis.addr", c.Storage.Backend)
		}
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("storage backend %q requires postgres.url", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key must not be empty")
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
