package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Serial     SerialConfig     `yaml:"serial"`
	Debounce   DebounceConfig   `yaml:"debounce"`
	Auth       AuthConfig       `yaml:"auth"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// SerialConfig holds the checkpoint serial link configuration. GateID and
// NodeID identify the checkpoint this process serves; the booth and device
// are resolved per scan from the hardware device code.
type SerialConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Port          string        `yaml:"port"`
	Baud          int           `yaml:"baud"`
	ReadTimeoutMS int           `yaml:"read_timeout_ms"`
	ReadTimeout   time.Duration `yaml:"-"` // Ignored by YAML parser
	GateID        int64         `yaml:"gate_id"`
	NodeID        int64         `yaml:"node_id"`
}

// DebounceConfig bounds the decision memo for duplicate hardware reads.
type DebounceConfig struct {
	TTLMS    int           `yaml:"ttl_ms"`
	TTL      time.Duration `yaml:"-"` // Ignored by YAML parser
	Capacity int           `yaml:"capacity"`
}

// AuthConfig holds the admin session token settings.
type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

// PushConfig holds the VAPID keys for web push alerts.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the alert worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 10
	}

	if cfg.Serial.Baud <= 0 {
		cfg.Serial.Baud = 115200
	}
	if cfg.Serial.ReadTimeoutMS <= 0 {
		cfg.Serial.ReadTimeoutMS = 1000
	}
	cfg.Serial.ReadTimeout = time.Duration(cfg.Serial.ReadTimeoutMS) * time.Millisecond

	if cfg.Debounce.TTLMS <= 0 {
		cfg.Debounce.TTLMS = 500
	}
	cfg.Debounce.TTL = time.Duration(cfg.Debounce.TTLMS) * time.Millisecond
	if cfg.Debounce.Capacity <= 0 {
		cfg.Debounce.Capacity = 512
	}

	if cfg.Auth.TokenTTLMinutes <= 0 {
		cfg.Auth.TokenTTLMinutes = 12 * 60
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
