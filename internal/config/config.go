package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	PGNFiles  []string `yaml:"pgn_files"`
	OutputDir string   `yaml:"output_dir"`

	DatabaseURL  string `yaml:"database_url"`
	RedisURL     string `yaml:"redis_url"`
	SeenTTLHours int    `yaml:"seen_ttl_hours"`

	Workers         int    `yaml:"workers"`
	FirstGameID     int64  `yaml:"first_game_id"`
	UnknownPlayerID string `yaml:"unknown_player_id"`

	HTTPAddr         string `yaml:"http_addr"`
	HTTPMaxBodyBytes int    `yaml:"http_max_body_bytes"`
}

func defaults() *AppConfig {
	return &AppConfig{
		OutputDir:        "out",
		SeenTTLHours:     720,
		Workers:          runtime.NumCPU(),
		FirstGameID:      1,
		UnknownPlayerID:  "unknown",
		HTTPAddr:         ":8080",
		HTTPMaxBodyBytes: 8 << 20,
	}
}

// Load reads FEATURES_CONFIG (optional YAML) and then applies env overrides.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("FEATURES_CONFIG")); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("PGN_FILES")); v != "" {
		cfg.PGNFiles = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("OUTPUT_DIR")); v != "" {
		cfg.OutputDir = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("SEEN_TTL_HOURS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SeenTTLHours = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("WORKERS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("FIRST_GAME_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.FirstGameID = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("UNKNOWN_PLAYER_ID")); v != "" {
		cfg.UnknownPlayerID = v
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_MAX_BODY_BYTES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPMaxBodyBytes = n
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *AppConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("OUTPUT_DIR must not be empty")
	}
	if strings.TrimSpace(c.UnknownPlayerID) == "" {
		return errors.New("UNKNOWN_PLAYER_ID must not be empty")
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.FirstGameID <= 0 {
		return fmt.Errorf("first_game_id must be positive, got %d", c.FirstGameID)
	}
	return nil
}

// SeenTTL is the lifetime of a fingerprint in the seen index.
func (c *AppConfig) SeenTTL() time.Duration {
	return time.Duration(c.SeenTTLHours) * time.Hour
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
