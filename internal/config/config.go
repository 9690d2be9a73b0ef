package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds application configuration.
type Config struct {
	// APIBaseURL is the base URL client commands talk to, including the
	// /api prefix (e.g. "http://localhost:8000/api").
	APIBaseURL string `json:"api_base_url"`

	// Bind is the interface the API server listens on.
	Bind string `json:"bind,omitempty"`

	// Port is the API server port.
	Port int `json:"port,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// Requests beyond the bound queue for a connection until the store
	// timeout elapses. 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// StoreTimeoutMS bounds how long a single request may wait on the
	// store, including queueing for a pooled connection.
	StoreTimeoutMS int `json:"store_timeout_ms,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:     "http://localhost:8000/api",
		Bind:           "127.0.0.1",
		Port:           8000,
		StoreTimeoutMS: 2000,
	}
}

// StoreTimeout returns StoreTimeoutMS as a duration, falling back to the
// default when unset.
func (c *Config) StoreTimeout() time.Duration {
	ms := c.StoreTimeoutMS
	if ms <= 0 {
		ms = DefaultConfig().StoreTimeoutMS
	}
	return time.Duration(ms) * time.Millisecond
}

// Addr returns the bind address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tick.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// when non-zero.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.APIBaseURL = overlay.APIBaseURL
	if result.APIBaseURL == "" {
		result.APIBaseURL = base.APIBaseURL
	}

	result.Bind = overlay.Bind
	if result.Bind == "" {
		result.Bind = base.Bind
	}

	result.Port = overlay.Port
	if result.Port == 0 {
		result.Port = base.Port
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.StoreTimeoutMS = overlay.StoreTimeoutMS
	if result.StoreTimeoutMS == 0 {
		result.StoreTimeoutMS = base.StoreTimeoutMS
	}

	return result
}
