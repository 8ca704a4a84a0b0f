// Package config loads service configuration from an optional TOML
// file with environment variable overrides. Environment wins so that
// containerized deployments can keep secrets out of the file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Server     Server     `toml:"server"`
	ClickHouse ClickHouse `toml:"clickhouse"`
	Postgres   Postgres   `toml:"postgres"`
	Geo        Geo        `toml:"geo"`
	Store      Store      `toml:"store"`
	Log        Log        `toml:"log"`
}

type Server struct {
	Port   string `toml:"port"`
	Origin string `toml:"origin"` // allowed CORS origin for the site
}

type ClickHouse struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Database string `toml:"database"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type Postgres struct {
	URL string `toml:"url"`
}

type Geo struct {
	IPEndpoint string `toml:"ip_endpoint"`
}

type Store struct {
	// MemoryCap bounds the in-memory demo store; oldest records are
	// evicted beyond it.
	MemoryCap int `toml:"memory_cap"`
}

type Log struct {
	Level string `toml:"level"`
}

// Load reads path when it exists, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: Server{Port: "8080", Origin: "http://localhost:3000"},
		Store:  Store{MemoryCap: 1000},
		Log:    Log{Level: "info"},
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(&cfg.Server.Port, "PORT")
	applyEnv(&cfg.Server.Origin, "FE_ORIGIN")
	applyEnv(&cfg.ClickHouse.Host, "CLICKHOUSE_HOST")
	applyEnvInt(&cfg.ClickHouse.Port, "CLICKHOUSE_NATIVE_PORT")
	applyEnv(&cfg.ClickHouse.Database, "CLICKHOUSE_DB_NAME")
	applyEnv(&cfg.ClickHouse.Username, "CLICKHOUSE_USERNAME")
	applyEnv(&cfg.ClickHouse.Password, "CLICKHOUSE_PASSWORD")
	applyEnv(&cfg.Postgres.URL, "DATABASE_URL")
	applyEnv(&cfg.Geo.IPEndpoint, "GEO_IP_ENDPOINT")
	applyEnv(&cfg.Log.Level, "LOG_LEVEL")

	return cfg, nil
}

// HasClickHouse reports whether a hosted event store is configured.
// Without one the service runs in demo mode on the in-memory store.
func (c *Config) HasClickHouse() bool {
	return c.ClickHouse.Host != "" && c.ClickHouse.Port != 0 && c.ClickHouse.Database != ""
}

// HasPostgres reports whether admin accounts are database-backed.
func (c *Config) HasPostgres() bool {
	return c.Postgres.URL != ""
}

func applyEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func applyEnvInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
