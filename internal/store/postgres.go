package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/cheese-features/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

type PostgresRepository struct {
	db *sql.DB
}

// OpenPostgres connects with the same pool settings the bot used for its
// game archive and verifies the connection.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresRepository(db), nil
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveTables upserts all rows in one transaction.
func (r *PostgresRepository) SaveTables(ctx context.Context, t *domain.Tables) (err error) {
	if t == nil {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertGames(ctx, tx, t.Games); err != nil {
		return err
	}
	if err = insertFeatures(ctx, tx, t.Features); err != nil {
		return err
	}
	if err = upsertPlayers(ctx, tx, t.Players); err != nil {
		return err
	}
	if err = insertPlayerGames(ctx, tx, t.PlayerGames); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertGames(ctx context.Context, tx *sql.Tx, games []domain.GameInfo) error {
	const query = `
		INSERT INTO chess_games (
			game_id, run_id, event, site, game_date, round,
			white, black, result, eco, opening, plies, scored_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (game_id) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			event = EXCLUDED.event,
			site = EXCLUDED.site,
			game_date = EXCLUDED.game_date,
			round = EXCLUDED.round,
			white = EXCLUDED.white,
			black = EXCLUDED.black,
			result = EXCLUDED.result,
			eco = EXCLUDED.eco,
			opening = EXCLUDED.opening,
			plies = EXCLUDED.plies,
			scored_at = EXCLUDED.scored_at`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare chess_games: %w", err)
	}
	defer stmt.Close()
	for _, g := range games {
		if _, err := stmt.ExecContext(ctx,
			g.GameID, g.RunID, g.Event, g.Site, g.Date, g.Round,
			g.White, g.Black, g.Result, g.ECO, g.Opening, g.Plies, g.ScoredAt,
		); err != nil {
			return fmt.Errorf("insert chess game %d: %w", g.GameID, err)
		}
	}
	return nil
}

func insertFeatures(ctx context.Context, tx *sql.Tx, rows []domain.FeatureVector) error {
	const query = `
		INSERT INTO chess_features (
			game_id, player_id, side,
			center_control_score, piece_activity_score, king_safety_score,
			attacking_moves_score, captures_score, pawn_structure_score
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (game_id, side) DO UPDATE SET
			player_id = EXCLUDED.player_id,
			center_control_score = EXCLUDED.center_control_score,
			piece_activity_score = EXCLUDED.piece_activity_score,
			king_safety_score = EXCLUDED.king_safety_score,
			attacking_moves_score = EXCLUDED.attacking_moves_score,
			captures_score = EXCLUDED.captures_score,
			pawn_structure_score = EXCLUDED.pawn_structure_score`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare chess_features: %w", err)
	}
	defer stmt.Close()
	for _, f := range rows {
		if _, err := stmt.ExecContext(ctx,
			f.GameID, f.PlayerID, f.Side,
			f.CenterControl, f.PieceActivity, f.KingSafety,
			f.AttackingMoves, f.Captures, f.PawnStructure,
		); err != nil {
			return fmt.Errorf("insert features game=%d side=%s: %w", f.GameID, f.Side, err)
		}
	}
	return nil
}

func upsertPlayers(ctx context.Context, tx *sql.Tx, players []domain.Player) error {
	const query = `
		INSERT INTO chess_players (player_id, name)
		VALUES ($1, $2)
		ON CONFLICT (player_id) DO NOTHING`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare chess_players: %w", err)
	}
	defer stmt.Close()
	for _, p := range players {
		if _, err := stmt.ExecContext(ctx, p.PlayerID, p.Name); err != nil {
			return fmt.Errorf("upsert player %s: %w", p.PlayerID, err)
		}
	}
	return nil
}

func insertPlayerGames(ctx context.Context, tx *sql.Tx, links []domain.PlayerGame) error {
	const query = `
		INSERT INTO chess_player_games (player_id, game_id, name, result, color)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id, color) DO UPDATE SET
			player_id = EXCLUDED.player_id,
			name = EXCLUDED.name,
			result = EXCLUDED.result`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare chess_player_games: %w", err)
	}
	defer stmt.Close()
	for _, l := range links {
		if _, err := stmt.ExecContext(ctx, l.PlayerID, l.GameID, l.Name, l.Result, l.Color); err != nil {
			return fmt.Errorf("insert player game %d/%s: %w", l.GameID, l.Color, err)
		}
	}
	return nil
}
