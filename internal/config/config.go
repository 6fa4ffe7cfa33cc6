package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration loaded from an optional YAML
// file and environment variables (environment wins)
type Config struct {
	Env                string `yaml:"env"`
	Port               string `yaml:"port"`
	DatabaseURL        string `yaml:"database_url"`
	RedisURL           string `yaml:"redis_url"`
	LogLevel           string `yaml:"log_level"`
	LogFormat          string `yaml:"log_format"`
	RunMigrations      bool   `yaml:"run_migrations"`
	WorkerConcurrency  int    `yaml:"worker_concurrency"`
	NotificationStream string `yaml:"notification_stream"`
}

func defaults() *Config {
	return &Config{
		Env:                "development",
		Port:               "8080",
		DatabaseURL:        "sqlite:gestor.db",
		LogLevel:           "info",
		LogFormat:          "text",
		WorkerConcurrency:  5,
		NotificationStream: "notifications:created",
	}
}

// Load reads configuration. If CONFIG_FILE is set, the YAML file at that path
// is applied over the defaults before environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Env = getEnvWithDefault("ENV", cfg.Env)
	cfg.Port = getEnvWithDefault("PORT", cfg.Port)
	cfg.DatabaseURL = getEnvWithDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = getEnvWithDefault("REDIS_URL", cfg.RedisURL)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvWithDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.NotificationStream = getEnvWithDefault("NOTIFICATION_STREAM", cfg.NotificationStream)

	var err error
	if cfg.RunMigrations, err = getBoolWithDefault("RUN_MIGRATIONS", cfg.RunMigrations); err != nil {
		return nil, err
	}
	if cfg.WorkerConcurrency, err = getIntWithDefault("WORKER_CONCURRENCY", cfg.WorkerConcurrency); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the app runs with ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for %s: %q", key, value)
	}
	return b, nil
}

func getIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid positive integer for %s: %q", key, value)
	}
	return n, nil
}
