package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store backends for the persisted auth record.
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds runtime configuration for the console.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:"127.0.0.1:8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	StoreBackend  string `envconfig:"STORE_BACKEND" default:"redis"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// ConsoleProfile scopes the persisted record to one device profile.
	ConsoleProfile string `envconfig:"CONSOLE_PROFILE" required:"true"`

	DirectoryURL string `envconfig:"DIRECTORY_URL" required:"true"`
	// DirectoryTimeout bounds directory calls; zero leaves them unbounded.
	DirectoryTimeout time.Duration `envconfig:"DIRECTORY_TIMEOUT" default:"0s"`

	NavConfig   string `envconfig:"NAV_CONFIG"`
	RolesConfig string `envconfig:"ROLES_CONFIG"`
	HomePath    string `envconfig:"HOME_PATH" default:"/dashboard"`

	LoginRateLimit    int `envconfig:"LOGIN_RATE_LIMIT" default:"10"`
	AssignConcurrency int `envconfig:"ASSIGN_CONCURRENCY" default:"4"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ConsoleProfile) == "" || strings.ContainsAny(c.ConsoleProfile, ": ") {
		return errors.New("console profile must be non-empty and contain no ':' or spaces")
	}
	switch c.StoreBackend {
	case StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	u, err := url.Parse(c.DirectoryURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("directory url %q is not absolute", c.DirectoryURL)
	}
	if c.DirectoryTimeout < 0 {
		return errors.New("directory timeout must not be negative")
	}
	if c.LoginRateLimit <= 0 {
		return errors.New("login rate limit must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
