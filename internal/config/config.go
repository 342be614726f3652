// Package config builds the application configuration from defaults, an
// optional YAML file and the environment.
//
// The configuration is constructed once at startup and passed to the
// components that need it; nothing reads it from package state.
package config

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage engines.
const (
	StorageDatabase = "database"
	StorageSession  = "session"
)

// Environment variables read by Load.
const (
	VarEnv         = "TODOS_ENV"
	VarDatabaseURL = "DATABASE_URL"
	VarDatabase    = "TODOS_DATABASE"
	VarAddr        = "TODOS_ADDR"
	VarStorage     = "TODOS_STORAGE"
	VarSecretKey   = "TODOS_SECRET_KEY"
)

// Config is the application configuration.
type Config struct {
	Env      string   `yaml:"env"`
	Addr     string   `yaml:"addr"`
	Storage  string   `yaml:"storage"`
	Database Database `yaml:"database"`
	Session  Session  `yaml:"session"`
}

// Database selects the SQLite database.
type Database struct {
	// URL is the connection string used in production.
	URL string `yaml:"url"`
	// Name is the local database file used outside production.
	Name string `yaml:"name"`
}

// Session configures session cookies.
type Session struct {
	CookieName string `yaml:"cookie_name"`
	// SecretKey signs session cookies. Generated at startup when empty, which
	// invalidates existing sessions on every restart.
	SecretKey string `yaml:"secret_key"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Env:     EnvDevelopment,
		Addr:    "localhost:5003",
		Storage: StorageDatabase,
		Database: Database{
			Name: "todos.db",
		},
		Session: Session{
			CookieName: "todolists_session",
		},
	}
}

// Load builds a Config. path names an optional YAML file; an empty path
// skips it. getenv is usually os.Getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg, getenv)

	if cfg.Session.SecretKey == "" {
		key, err := generateSecretKey()
		if err != nil {
			return nil, err
		}
		cfg.Session.SecretKey = key
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DSN returns the database to open: the production URL in production, the
// local database name otherwise.
func (c Config) DSN() string {
	if c.Env == EnvProduction {
		return c.Database.URL
	}
	return c.Database.Name
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	overrides := []struct {
		name   string
		target *string
	}{
		{VarEnv, &cfg.Env},
		{VarDatabaseURL, &cfg.Database.URL},
		{VarDatabase, &cfg.Database.Name},
		{VarAddr, &cfg.Addr},
		{VarStorage, &cfg.Storage},
		{VarSecretKey, &cfg.Session.SecretKey},
	}
	for _, o := range overrides {
		if v := getenv(o.name); v != "" {
			*o.target = v
		}
	}
}

func generateSecretKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
