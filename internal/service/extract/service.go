// Package extract turns a stream of PGN games into feature tables: one
// feature row and one player link per side per game, plus the run's player
// registry.
package extract

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/park285/cheese-features/internal/chess/board"
	"github.com/park285/cheese-features/internal/domain"
	"github.com/park285/cheese-features/internal/features"
	"github.com/park285/cheese-features/internal/pgn"
	"github.com/park285/cheese-features/internal/store"
)

var ErrNoRepository = errors.New("extract: repository is required")

// SeenIndex remembers fingerprints of games scored by earlier runs.
type SeenIndex interface {
	Mark(ctx context.Context, fingerprint string) (bool, error)
	Forget(ctx context.Context, fingerprints ...string) error
}

type Config struct {
	Workers         int
	FirstGameID     int64
	UnknownPlayerID string
}

// Summary counts what happened to each game record in a run.
type Summary struct {
	RunID      string `json:"run_id"`
	Read       int    `json:"read"`
	Emitted    int    `json:"emitted"`
	Failed     int    `json:"failed"`
	Duplicates int    `json:"duplicates"`
}

type Service struct {
	repo   store.Repository
	seen   SeenIndex
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo store.Repository, seen SeenIndex, cfg Config, logger *zap.Logger) (*Service, error) {
	if repo == nil {
		return nil, ErrNoRepository
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.FirstGameID <= 0 {
		cfg.FirstGameID = 1
	}
	if strings.TrimSpace(cfg.UnknownPlayerID) == "" {
		cfg.UnknownPlayerID = "unknown"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, seen: seen, cfg: cfg, logger: logger, now: time.Now}, nil
}

type job struct {
	id   int64
	game *pgn.Game
}

type scored struct {
	id          int64
	fingerprint string
	info        domain.GameInfo
	links       [2]domain.PlayerGame
	rows        [2]domain.FeatureVector
}

// Run extracts every game from sc and saves the tables.
func (s *Service) Run(ctx context.Context, sc *pgn.Scanner) (*Summary, error) {
	tables, summary, fps, err := s.extract(ctx, sc)
	if err != nil {
		return summary, err
	}
	if err := s.repo.SaveTables(ctx, tables); err != nil {
		if s.seen != nil && len(fps) > 0 {
			if ferr := s.seen.Forget(context.WithoutCancel(ctx), fps...); ferr != nil {
				s.logger.Warn("seen_forget_failed", zap.Error(ferr))
			}
		}
		return summary, fmt.Errorf("save tables: %w", err)
	}
	s.logger.Info("extract_run_saved",
		zap.String("run_id", summary.RunID),
		zap.Int("games", summary.Emitted),
		zap.Int("players", len(tables.Players)),
	)
	return summary, nil
}

// Extract scores every game from sc without persisting anything. Games that
// fail to parse or replay are logged and left out.
func (s *Service) Extract(ctx context.Context, sc *pgn.Scanner) (*domain.Tables, *Summary, error) {
	tables, summary, _, err := s.extract(ctx, sc)
	return tables, summary, err
}

func (s *Service) extract(ctx context.Context, sc *pgn.Scanner) (*domain.Tables, *Summary, []string, error) {
	summary := &Summary{RunID: uuid.NewString()}
	logger := s.logger.With(zap.String("run_id", summary.RunID))
	ids := NewIDGenerator(s.cfg.FirstGameID)
	scoredAt := s.now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job)
	results := make(chan scored)

	var mu sync.Mutex
	countFailed := func() {
		mu.Lock()
		summary.Failed++
		mu.Unlock()
	}

	g.Go(func() error {
		defer close(jobs)
		for sc.Scan() {
			if err := gctx.Err(); err != nil {
				return err
			}
			summary.Read++
			game, err := pgn.Parse(sc.Raw())
			if err != nil {
				countFailed()
				logger.Warn("pgn_parse_failed", zap.Int("record", summary.Read), zap.Error(err))
				continue
			}
			if s.seen != nil {
				fresh, err := s.seen.Mark(gctx, game.Fingerprint())
				if err != nil {
					logger.Warn("seen_mark_failed", zap.Error(err))
				} else if !fresh {
					summary.Duplicates++
					continue
				}
			}
			select {
			case jobs <- job{id: ids.Next(), game: game}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read pgn: %w", err)
		}
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for j := range jobs {
				res, err := s.scoreGame(j, scoredAt, summary.RunID)
				if err != nil {
					countFailed()
					logger.Warn("game_replay_failed",
						zap.Int64("game_id", j.id),
						zap.String("white", j.game.TagOr("White", "?")),
						zap.String("black", j.game.TagOr("Black", "?")),
						zap.Error(err),
					)
					continue
				}
				select {
				case results <- res:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	var collected []scored
	for r := range results {
		collected = append(collected, r)
	}
	if err := g.Wait(); err != nil {
		return nil, summary, nil, err
	}

	sort.Slice(collected, func(i, k int) bool { return collected[i].id < collected[k].id })
	tables, fps := assemble(collected)
	summary.Emitted = len(collected)
	logger.Info("extract_run_done",
		zap.Int("read", summary.Read),
		zap.Int("emitted", summary.Emitted),
		zap.Int("failed", summary.Failed),
		zap.Int("duplicates", summary.Duplicates),
	)
	return tables, summary, fps, nil
}

// assemble lays out scored games in id order. The player registry is built
// in the same order so the first name seen for an id is deterministic.
func assemble(games []scored) (*domain.Tables, []string) {
	tables := &domain.Tables{
		Games:       make([]domain.GameInfo, 0, len(games)),
		Features:    make([]domain.FeatureVector, 0, 2*len(games)),
		PlayerGames: make([]domain.PlayerGame, 0, 2*len(games)),
	}
	fps := make([]string, 0, len(games))
	reg := NewRegistry()
	for _, g := range games {
		tables.Games = append(tables.Games, g.info)
		for i := range g.links {
			tables.PlayerGames = append(tables.PlayerGames, g.links[i])
			tables.Features = append(tables.Features, g.rows[i])
			reg.Add(domain.Player{PlayerID: g.links[i].PlayerID, Name: g.links[i].Name})
		}
		fps = append(fps, g.fingerprint)
	}
	tables.Players = reg.Players()
	return tables, fps
}

func (s *Service) scoreGame(j job, scoredAt time.Time, runID string) (res scored, err error) {
	// The rules engine can panic on positions it cannot represent.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("replay panic: %v", r)
		}
	}()

	b, err := board.FromFEN(j.game.StartFEN())
	if err != nil {
		return scored{}, fmt.Errorf("start position: %w", err)
	}
	white, black, err := features.ScoreGame(b, j.game.Moves)
	if err != nil {
		return scored{}, fmt.Errorf("%w (stopped after %d plies at %s)", err, b.Plies(), b.FEN())
	}

	eco, title := j.game.TagOr("ECO", ""), j.game.TagOr("Opening", "")
	if eco == "" || title == "" {
		code, name := b.Opening()
		if eco == "" {
			eco = code
		}
		if title == "" {
			title = name
		}
	}

	res = scored{
		id:          j.id,
		fingerprint: j.game.Fingerprint(),
		info: domain.GameInfo{
			GameID:   j.id,
			RunID:    runID,
			Event:    j.game.TagOr("Event", ""),
			Site:     j.game.TagOr("Site", ""),
			Date:     j.game.TagOr("Date", ""),
			Round:    j.game.TagOr("Round", ""),
			White:    j.game.TagOr("White", "?"),
			Black:    j.game.TagOr("Black", "?"),
			Result:   gameResult(j.game),
			ECO:      eco,
			Opening:  title,
			Plies:    b.Plies(),
			ScoredAt: scoredAt,
		},
	}
	for i, side := range []features.Side{features.White, features.Black} {
		link := playerDetails(j.game, side, s.cfg.UnknownPlayerID, j.id)
		sc := white
		if side == features.Black {
			sc = black
		}
		res.links[i] = link
		res.rows[i] = featureRow(j.id, link, sc)
	}
	return res, nil
}
