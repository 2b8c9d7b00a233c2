package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HUTS4U_"

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Sync       SyncConfig       `yaml:"sync"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Log        LogConfig        `yaml:"log"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
// Size also bounds concurrent inventory fetches during a sync.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RequestIPHeader string        `yaml:"request_ip_header"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	MaxStayNights   int           `yaml:"max_stay_nights"`
}

// SyncConfig holds the upstream backend sync configuration.
type SyncConfig struct {
	Enabled         bool              `yaml:"enabled"`
	IntervalSeconds int               `yaml:"interval_seconds"`
	Interval        time.Duration     `yaml:"-"` // Ignored by YAML parser
	BaseURL         string            `yaml:"base_url"`
	Headers         map[string]string `yaml:"headers"`
	PageSize        int               `yaml:"page_size"`
	WindowDays      int               `yaml:"window_days"`
	TimeoutSeconds  int               `yaml:"timeout_seconds"`
	HTTPProxy       string            `yaml:"http_proxy"`
	Timezone        string            `yaml:"timezone"`
	Location        *time.Location    `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
	EnforceInventoryChecks bool   `yaml:"enforce_inventory_checks"`
}

// LogConfig holds the application logger configuration.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the configuration from the given path, then applies a .env file
// from the working directory (if any) and HUTS4U_* environment overrides.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides secrets and deployment specific values from the
// environment.
func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	str("DATABASE_DSN", &cfg.Database.DSN)
	str("VAPID_PUBLIC_KEY", &cfg.Push.PublicKey)
	str("VAPID_PRIVATE_KEY", &cfg.Push.PrivateKey)
	str("VAPID_SUBJECT", &cfg.Push.Subject)
	str("SYNC_BASE_URL", &cfg.Sync.BaseURL)
	str("LOG_LEVEL", &cfg.Log.Level)

	if v, ok := lookup(EnvPrefix + "SYNC_TOKEN"); ok && v != "" {
		if cfg.Sync.Headers == nil {
			cfg.Sync.Headers = make(map[string]string)
		}
		cfg.Sync.Headers["Authorization"] = "Bearer " + v
	}

	if v, ok := lookup(EnvPrefix + "PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sPORT %q: %w", EnvPrefix, v, err)
		}
		cfg.Server.Port = port
	}

	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.CORSOrigins = origins
	}
	return nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if cfg.Server.MaxStayNights <= 0 {
		cfg.Server.MaxStayNights = 30
	}

	if cfg.Sync.IntervalSeconds <= 0 {
		cfg.Sync.IntervalSeconds = 300
	}
	cfg.Sync.Interval = time.Duration(cfg.Sync.IntervalSeconds) * time.Second

	if cfg.Sync.PageSize <= 0 {
		cfg.Sync.PageSize = 100
	}
	if cfg.Sync.WindowDays <= 0 {
		cfg.Sync.WindowDays = 30
	}
	if cfg.Sync.TimeoutSeconds <= 0 {
		cfg.Sync.TimeoutSeconds = 30
	}
	cfg.Sync.BaseURL = strings.TrimRight(cfg.Sync.BaseURL, "/")
	if cfg.Sync.Enabled && cfg.Sync.BaseURL == "" {
		return fmt.Errorf("sync.base_url is required when sync is enabled")
	}

	if cfg.Sync.Timezone == "" {
		cfg.Sync.Timezone = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(cfg.Sync.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", cfg.Sync.Timezone, err)
	}
	cfg.Sync.Location = loc

	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return nil
}
