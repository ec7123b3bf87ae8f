package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	Server    Server    `yaml:"server"`
	Storage   Storage   `yaml:"storage"`
	Auth      Auth      `yaml:"auth"`
	Reminders Reminders `yaml:"reminders"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Storage struct {
	// Backend is one of "file", "sqlite" or "memory".
	Backend    string `yaml:"backend"`
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

type Auth struct {
	// JWTSecret is the shared secret identity tokens are signed with.
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type Reminders struct {
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
}

func defaults() *Config {
	return &Config{
		Server:    Server{Addr: ":8080"},
		Storage:   Storage{Backend: BackendFile, DataDir: "data", SQLitePath: "data/focusly.db"},
		Auth:      Auth{Issuer: "focusly"},
		Reminders: Reminders{PollIntervalSeconds: 30},
	}
}

// Load reads the YAML config at path (missing file is fine, defaults apply)
// and then applies FOCUSLY_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.Server.Addr = getEnv("FOCUSLY_ADDR", cfg.Server.Addr)
	cfg.Storage.Backend = getEnv("FOCUSLY_STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.DataDir = getEnv("FOCUSLY_DATA_DIR", cfg.Storage.DataDir)
	cfg.Storage.SQLitePath = getEnv("FOCUSLY_SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Auth.JWTSecret = getEnv("FOCUSLY_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.Issuer = getEnv("FOCUSLY_JWT_ISSUER", cfg.Auth.Issuer)
	if raw := os.Getenv("FOCUSLY_REMINDER_POLL_SECONDS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.Reminders.PollIntervalSeconds = n
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Reminders.PollIntervalSeconds <= 0 {
		return fmt.Errorf("reminder poll interval must be positive")
	}
	return nil
}

func (c *Config) ReminderPollInterval() time.Duration {
	return time.Duration(c.Reminders.PollIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
