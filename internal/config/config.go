// Package config loads the newsdesk YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrNoBaseURL = errors.New("api.base_url is not set")

// Config is the top-level configuration.
type Config struct {
	API   APIConfig   `yaml:"api"`
	Cache CacheConfig `yaml:"cache"`
	Log   LogConfig   `yaml:"log"`
	UI    UIConfig    `yaml:"ui"`
	Mock  MockConfig  `yaml:"mock"`
}

// APIConfig describes the news backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig controls the query cache.
type CacheConfig struct {
	// TTL is how long a fetched list counts as fresh.
	TTL time.Duration `yaml:"ttl"`
	// Path of the sqlite file; empty keeps the cache in memory only.
	Path string `yaml:"path"`
	// RedisAddr selects a shared redis store instead of sqlite.
	RedisAddr string `yaml:"redis_addr"`
	// PostgresDSN selects a postgres store; redis wins when both are set.
	PostgresDSN string `yaml:"postgres_dsn"`
	// RedisExpiry bounds how long redis keeps an entry.
	RedisExpiry time.Duration `yaml:"redis_expiry"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// UIConfig controls the terminal UI.
type UIConfig struct {
	Language        string        `yaml:"language"`
	Route           string        `yaml:"route"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Watchlist       []string      `yaml:"watchlist"`
}

// MockConfig controls the mock backend.
type MockConfig struct {
	Addr            string        `yaml:"addr"`
	MarketItems     int           `yaml:"market_items"`
	ResearchItems   int           `yaml:"research_items"`
	Feeds           []string      `yaml:"feeds"`
	PublishInterval time.Duration `yaml:"publish_interval"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load reads a YAML file and returns the Config. A .env file in the working
// directory is loaded first if present, and ${VAR} references are expanded.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// Validate checks the settings the articles client cannot run without.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return ErrNoBaseURL
	}
	if c.Mock.MarketItems < 0 || c.Mock.ResearchItems < 0 {
		return fmt.Errorf("mock item counts must not be negative")
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080"
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 10 * time.Second
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 5 * time.Minute
	}
	if cfg.Cache.RedisExpiry <= 0 {
		cfg.Cache.RedisExpiry = 24 * time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.UI.Language == "" {
		cfg.UI.Language = "en"
	}
	if cfg.UI.Route == "" {
		cfg.UI.Route = "/"
	}
	if cfg.UI.RefreshInterval <= 0 {
		cfg.UI.RefreshInterval = time.Minute
	}
	if len(cfg.UI.Watchlist) == 0 {
		cfg.UI.Watchlist = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "NVDA", "META"}
	}
	if cfg.Mock.Addr == "" {
		cfg.Mock.Addr = ":8080"
	}
	if cfg.Mock.MarketItems == 0 {
		cfg.Mock.MarketItems = 100
	}
	if cfg.Mock.ResearchItems == 0 {
		cfg.Mock.ResearchItems = 12
	}
	if cfg.Mock.PublishInterval <= 0 {
		cfg.Mock.PublishInterval = 30 * time.Second
	}
}
