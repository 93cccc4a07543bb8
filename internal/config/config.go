// Package config loads the service configuration from an optional YAML
// file with ${VAR} environment substitution, falling back to defaults
// and a few well-known environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr           string   `yaml:"addr"`
		ServiceName    string   `yaml:"service_name"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		APIKeys        []string `yaml:"api_keys"`
		RateLimit      struct {
			PerSecond float64 `yaml:"per_second"`
			Burst     int     `yaml:"burst"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`

	Storage struct {
		Backend string `yaml:"backend"`

		File struct {
			Path string `yaml:"path"`
		} `yaml:"file"`

		Redis struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		} `yaml:"redis"`

		Postgres struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
			SSLMode  string `yaml:"sslmode"`
		} `yaml:"postgres"`
	} `yaml:"storage"`
}

// Load reads the config file at path. A missing file is not an error:
// defaults plus environment overrides apply instead. The path itself
// can be overridden with CONFIG_PATH.
func Load(path string) (*Config, error) {
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		path = env
	}

	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err == nil {
		// Replace environment variables in the YAML content
		content := string(data)
		for _, env := range os.Environ() {
			pair := strings.SplitN(env, "=", 2)
			if len(pair) != 2 {
				continue
			}
			placeholder := "${" + pair[0] + "}"
			content = strings.ReplaceAll(content, placeholder, pair[1])
		}
		if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
			return nil, fmt.Errorf("error parsing config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.ServiceName = "taskd"
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Server.RateLimit.PerSecond = 50
	cfg.Server.RateLimit.Burst = 100
	cfg.Storage.Backend = "memory"
	cfg.Storage.File.Path = "data/tasks.json"
	cfg.Storage.Redis.Addr = "localhost:6379"
	cfg.Storage.Postgres.Host = "localhost"
	cfg.Storage.Postgres.Port = 5432
	cfg.Storage.Postgres.SSLMode = "disable"
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("API_KEYS"); v != "" {
		cfg.Server.APIKeys = splitList(v)
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("TASK_FILE"); v != "" {
		cfg.Storage.File.Path = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Storage.Redis.Addr = v
	}
}

// PostgresDSN builds the connection string for the postgres backend.
func (c *Config) PostgresDSN() string {
	p := c.Storage.Postgres
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
