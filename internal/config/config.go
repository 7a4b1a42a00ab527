package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Session store drivers
const (
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"3000"`
	Env  string `envconfig:"ENV" default:"development"`

	// Backend API configuration
	Backend BackendConfig

	// Session persistence configuration
	Session SessionConfig

	// Database configuration (postgres session driver)
	Database DatabaseConfig

	// Redis configuration (redis session driver)
	RedisURL string `envconfig:"REDIS_URL"`

	// CORS configuration
	CORS CORSConfig

	// Development backend configuration
	DevBackend DevBackendConfig
}

// BackendConfig holds the REST backend configuration
type BackendConfig struct {
	BaseURL string `envconfig:"API_BASE_URL" required:"true"`
	// Zero means no client-side timeout.
	Timeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"0"`
}

// SessionConfig holds the session store configuration
type SessionConfig struct {
	Driver  string `envconfig:"SESSION_DRIVER" default:"file"`
	Profile string `envconfig:"SESSION_PROFILE" default:"default"`
	Dir     string `envconfig:"SESSION_DIR"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"require"`
}

// ConnectionString returns the PostgreSQL connection string
func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// DevBackendConfig holds configuration for the local stand-in backend
type DevBackendConfig struct {
	Port      string        `envconfig:"DEV_BACKEND_PORT" default:"8080"`
	SecretKey string        `envconfig:"DEV_JWT_SECRET_KEY" default:"dev-secret-key-minimum-32-characters"`
	TokenTTL  time.Duration `envconfig:"DEV_TOKEN_TTL" default:"6h"`
	// Shared by every demo account
	DemoPassword string `envconfig:"DEV_DEMO_PASSWORD" default:"dropguard"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDevBackend loads only the development backend configuration
func LoadDevBackend() (*DevBackendConfig, error) {
	var cfg DevBackendConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks driver-specific requirements
func (c *Config) Validate() error {
	switch c.Session.Driver {
	case DriverFile, DriverMemory:
	case DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for session driver %q", c.Session.Driver)
		}
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
			return fmt.Errorf("DB_HOST, DB_USER and DB_NAME are required for session driver %q", c.Session.Driver)
		}
	default:
		return fmt.Errorf("unknown session driver %q", c.Session.Driver)
	}

	if c.Session.Profile == "" {
		return fmt.Errorf("SESSION_PROFILE must not be empty")
	}
	// The profile names a file under SESSION_DIR
	if strings.ContainsAny(c.Session.Profile, `/\`) || strings.Contains(c.Session.Profile, "..") {
		return fmt.Errorf("SESSION_PROFILE %q must not contain path separators or \"..\"", c.Session.Profile)
	}

	return nil
}

// SessionDir returns the directory used by the file session driver
func (c *Config) SessionDir() (string, error) {
	if c.Session.Dir != "" {
		return c.Session.Dir, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(base, "dropguard"), nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
