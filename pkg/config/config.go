package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the runtime configuration for the Agent Docs server. Every
// field maps to an environment variable; unset variables take the defaults
// below.
type Config struct {
	// DatabasePath is the bbolt database file. DATABASE_PATH
	DatabasePath string `mapstructure:"database_path"`
	// Address is the listen address. ADDRESS
	Address string `mapstructure:"address"`
	// Port is the listen port. PORT
	Port int `mapstructure:"port"`
	// StaticDir, when set, serves a single-page app with index.html
	// fallback for unknown non-API routes. STATIC_DIR
	StaticDir string `mapstructure:"static_dir"`
	// WorkspaceRateLimit caps workspace creations per client IP per hour.
	// WORKSPACE_RATE_LIMIT
	WorkspaceRateLimit int `mapstructure:"workspace_rate_limit"`
	// LogLevel is one of debug, info, warn, error. LOG_LEVEL
	LogLevel string `mapstructure:"log_level"`
	// LogJSON switches log output from console to JSON. LOG_JSON
	LogJSON bool `mapstructure:"log_json"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("database_path", "agentdocs.db")
	v.SetDefault("address", "0.0.0.0")
	v.SetDefault("port", 8000)
	v.SetDefault("static_dir", "")
	v.SetDefault("workspace_rate_limit", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.AutomaticEnv()
	for _, key := range []string{
		"database_path",
		"address",
		"port",
		"static_dir",
		"workspace_rate_limit",
		"log_level",
		"log_json",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.WorkspaceRateLimit < 1 {
		return fmt.Errorf("workspace_rate_limit must be at least 1")
	}
	return nil
}

// ListenAddr returns the address:port string for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}
