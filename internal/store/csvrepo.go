package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-features/internal/domain"
)

const (
	FeaturesFile    = "chess_features.csv"
	PlayerGamesFile = "player_games.csv"
	PlayersFile     = "player.csv"
	GamesFile       = "games.csv"
)

var (
	featureHeader    = []string{"center_control_score", "piece_activity_score", "king_safety_score", "attacking_moves_score", "captures_score", "pawn_structure_score", "game_id", "player_id"}
	playerGameHeader = []string{"player_id", "name", "result", "color", "game_id"}
	playerHeader     = []string{"player_id", "name"}
	gameHeader       = []string{"game_id", "run_id", "event", "site", "date", "round", "white", "black", "result", "eco", "opening", "plies", "scored_at"}
)

// CSVRepository writes each table to its own file under dir, replacing any
// previous content.
type CSVRepository struct {
	dir string
}

func NewCSVRepository(dir string) (*CSVRepository, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("csv output dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &CSVRepository{dir: dir}, nil
}

func (r *CSVRepository) Dir() string { return r.dir }

func (r *CSVRepository) SaveTables(ctx context.Context, t *domain.Tables) error {
	if t == nil {
		return nil
	}
	features := make([][]string, 0, len(t.Features))
	for _, f := range t.Features {
		features = append(features, []string{
			strconv.Itoa(f.CenterControl),
			strconv.Itoa(f.PieceActivity),
			strconv.Itoa(f.KingSafety),
			strconv.Itoa(f.AttackingMoves),
			strconv.Itoa(f.Captures),
			strconv.Itoa(f.PawnStructure),
			strconv.FormatInt(f.GameID, 10),
			f.PlayerID,
		})
	}
	links := make([][]string, 0, len(t.PlayerGames))
	for _, l := range t.PlayerGames {
		links = append(links, []string{l.PlayerID, l.Name, l.Result, l.Color, strconv.FormatInt(l.GameID, 10)})
	}
	players := make([][]string, 0, len(t.Players))
	for _, p := range t.Players {
		players = append(players, []string{p.PlayerID, p.Name})
	}
	games := make([][]string, 0, len(t.Games))
	for _, g := range t.Games {
		games = append(games, []string{
			strconv.FormatInt(g.GameID, 10), g.RunID, g.Event, g.Site, g.Date, g.Round,
			g.White, g.Black, g.Result, g.ECO, g.Opening, strconv.Itoa(g.Plies),
			g.ScoredAt.UTC().Format(time.RFC3339),
		})
	}

	files := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{FeaturesFile, featureHeader, features},
		{PlayerGamesFile, playerGameHeader, links},
		{PlayersFile, playerHeader, players},
		{GamesFile, gameHeader, games},
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.writeFile(f.name, f.header, f.rows); err != nil {
			return err
		}
	}
	return nil
}

// writeFile writes to a temp file and renames it into place.
func (r *CSVRepository) writeFile(name string, header []string, rows [][]string) error {
	tmp, err := os.CreateTemp(r.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(r.dir, name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
