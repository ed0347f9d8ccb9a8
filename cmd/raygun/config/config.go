package config

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
)

const (
	DefaultEndpoint = "https://api.raygun.io"
	envPrefix       = "RAYGUN_"
)

// Config is the process wide reporter configuration. It is loaded once and
// passed by value; nothing in the pipeline mutates it.
type Config struct {
	APIKey   string      `koanf:"api_key"`
	Endpoint string      `koanf:"endpoint"`
	Version  string      `koanf:"version"`
	Node     string      `koanf:"node"`
	LogLevel string      `koanf:"log_level"`
	Tags     []string    `koanf:"-"`
	User     *UserConfig `koanf:"user"`
}

// UserConfig is the optional identity reported for captures made outside
// of a request.
type UserConfig struct {
	Identifier string `koanf:"identifier"`
	Email      string `koanf:"email"`
	FullName   string `koanf:"full_name"`
	FirstName  string `koanf:"first_name"`
	UUID       string `koanf:"uuid"`
}

// Load reads an optional YAML file and then RAYGUN_* environment variables,
// the latter taking precedence. Nested keys use a double underscore, e.g.
// RAYGUN_USER__EMAIL.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	// Default values
	if !k.Exists("endpoint") {
		k.Set("endpoint", DefaultEndpoint)
	}
	if !k.Exists("log_level") {
		k.Set("log_level", "info")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	cfg.Tags = parseTags(k.Get("tags"))

	if cfg.User != nil && cfg.User.UUID != "" {
		if _, err := uuid.Parse(cfg.User.UUID); err != nil {
			return Config{}, fmt.Errorf("invalid user uuid %q: %w", cfg.User.UUID, err)
		}
	}

	return cfg, nil
}

// parseTags accepts either a YAML list or a comma separated string.
func parseTags(raw any) []string {
	var tags []string
	switch v := raw.(type) {
	case string:
		tags = strings.Split(v, ",")
	case []string:
		tags = v
	case []any:
		tags = lo.Map(v, func(item any, _ int) string { return fmt.Sprint(item) })
	}

	tags = lo.Map(tags, func(tag string, _ int) string { return strings.TrimSpace(tag) })
	return lo.Uniq(lo.Compact(tags))
}
