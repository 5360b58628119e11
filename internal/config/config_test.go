package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"FEATURES_CONFIG", "PGN_FILES", "OUTPUT_DIR", "DATABASE_URL", "REDIS_URL",
		"SEEN_TTL_HOURS", "WORKERS", "FIRST_GAME_ID", "UNKNOWN_PLAYER_ID",
		"HTTP_ADDR", "HTTP_MAX_BODY_BYTES",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OutputDir != "out" || cfg.UnknownPlayerID != "unknown" || cfg.FirstGameID != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Fatalf("workers = %d", cfg.Workers)
	}
	if cfg.SeenTTL() != 720*time.Hour {
		t.Fatalf("seen ttl = %v", cfg.SeenTTL())
	}
	if cfg.HTTPAddr != ":8080" || cfg.HTTPMaxBodyBytes != 8<<20 {
		t.Fatalf("http defaults: %s %d", cfg.HTTPAddr, cfg.HTTPMaxBodyBytes)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PGN_FILES", " a.pgn, ,b.pgn ")
	t.Setenv("WORKERS", "3")
	t.Setenv("FIRST_GAME_ID", "100")
	t.Setenv("SEEN_TTL_HOURS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.PGNFiles) != 2 || cfg.PGNFiles[0] != "a.pgn" || cfg.PGNFiles[1] != "b.pgn" {
		t.Fatalf("pgn files = %v", cfg.PGNFiles)
	}
	if cfg.Workers != 3 || cfg.FirstGameID != 100 {
		t.Fatalf("workers=%d first=%d", cfg.Workers, cfg.FirstGameID)
	}
	if cfg.SeenTTLHours != 720 {
		t.Fatalf("invalid number should be ignored, got %d", cfg.SeenTTLHours)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "features.yaml")
	yml := "output_dir: /tmp/features\nworkers: 2\nunknown_player_id: anon\npgn_files:\n  - games.pgn\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("FEATURES_CONFIG", path)
	t.Setenv("WORKERS", "6")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OutputDir != "/tmp/features" || cfg.UnknownPlayerID != "anon" {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if cfg.Workers != 6 {
		t.Fatalf("env should override yaml, workers = %d", cfg.Workers)
	}
	if len(cfg.PGNFiles) != 1 || cfg.PGNFiles[0] != "games.pgn" {
		t.Fatalf("pgn files = %v", cfg.PGNFiles)
	}
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("workers: [1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("FEATURES_CONFIG", path)
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}
