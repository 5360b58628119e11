// Package chessbuilder wires the extraction service to the stores selected
// by configuration.
package chessbuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/cheese-features/internal/config"
	"github.com/park285/cheese-features/internal/service/extract"
	"github.com/park285/cheese-features/internal/store"
)

type Deps struct {
	Service  *extract.Service
	Repo     store.Repository
	CSV      *store.CSVRepository
	Postgres *store.PostgresRepository
	Seen     *store.SeenIndex
}

// New builds a service that persists to CSV always, to Postgres when
// DATABASE_URL is set, and skips already-seen games when REDIS_URL is set.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := &Deps{}

	csvRepo, err := store.NewCSVRepository(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	deps.CSV = csvRepo
	repos := []store.Repository{csvRepo}

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		deps.Postgres = pg
		if err := pg.EnsureSchema(ctx); err != nil {
			deps.Close()
			return nil, err
		}
		repos = append(repos, pg)
	}

	var seen extract.SeenIndex
	if strings.TrimSpace(cfg.RedisURL) != "" {
		idx, err := store.OpenSeenIndex(ctx, cfg.RedisURL, cfg.SeenTTL())
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("init seen index: %w", err)
		}
		deps.Seen = idx
		seen = idx
	}

	deps.Repo = store.Multi(repos...)
	svc, err := extract.NewService(deps.Repo, seen, serviceConfig(cfg), logger)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Service = svc
	logger.Info("extract_deps_ready",
		zap.String("output_dir", csvRepo.Dir()),
		zap.Bool("postgres", deps.Postgres != nil),
		zap.Bool("seen_index", deps.Seen != nil),
		zap.Int("workers", cfg.Workers),
	)
	return deps, nil
}

// NewStateless builds a service backed by memory only, for request/response use.
func NewStateless(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	repo := store.NewMemoryRepository()
	svc, err := extract.NewService(repo, nil, serviceConfig(cfg), logger)
	if err != nil {
		return nil, err
	}
	return &Deps{Service: svc, Repo: repo}, nil
}

func serviceConfig(cfg *config.AppConfig) extract.Config {
	return extract.Config{
		Workers:         cfg.Workers,
		FirstGameID:     cfg.FirstGameID,
		UnknownPlayerID: cfg.UnknownPlayerID,
	}
}

func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	if d.Seen != nil {
		errs = append(errs, d.Seen.Close())
	}
	if d.Postgres != nil {
		errs = append(errs, d.Postgres.Close())
	}
	return errors.Join(errs...)
}
