package store

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/park285/cheese-features/internal/domain"
)

func sampleTables() *domain.Tables {
	return &domain.Tables{
		Games: []domain.GameInfo{{GameID: 1, RunID: "run", White: "A", Black: "B", Result: "1-0", Plies: 3, ScoredAt: time.Unix(0, 0)}},
		Features: []domain.FeatureVector{
			{GameID: 1, PlayerID: "a", Side: "white", CenterControl: 2, PieceActivity: 45, KingSafety: 8},
			{GameID: 1, PlayerID: "b", Side: "black", CenterControl: 3, PieceActivity: 45, KingSafety: 8, PawnStructure: -1},
		},
		PlayerGames: []domain.PlayerGame{
			{PlayerID: "a", Name: "A", Result: "1-0", Color: "white", GameID: 1},
			{PlayerID: "b", Name: "B, \"the\" second", Result: "1-0", Color: "black", GameID: 1},
		},
		Players: []domain.Player{{PlayerID: "a", Name: "A"}, {PlayerID: "b", Name: "B, \"the\" second"}},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestCSVRepositoryWritesTables(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	repo, err := NewCSVRepository(dir)
	if err != nil {
		t.Fatalf("NewCSVRepository: %v", err)
	}
	if err := repo.SaveTables(context.Background(), sampleTables()); err != nil {
		t.Fatalf("SaveTables: %v", err)
	}

	features := readCSV(t, filepath.Join(dir, FeaturesFile))
	if len(features) != 3 {
		t.Fatalf("feature rows = %d", len(features))
	}
	if features[0][0] != "center_control_score" || features[0][7] != "player_id" {
		t.Fatalf("feature header = %v", features[0])
	}
	if got := features[2]; got[0] != "3" || got[5] != "-1" || got[6] != "1" || got[7] != "b" {
		t.Fatalf("black row = %v", got)
	}

	players := readCSV(t, filepath.Join(dir, PlayersFile))
	if len(players) != 3 || players[2][1] != "B, \"the\" second" {
		t.Fatalf("players = %v", players)
	}
	links := readCSV(t, filepath.Join(dir, PlayerGamesFile))
	if len(links) != 3 || links[1][3] != "white" || links[2][4] != "1" {
		t.Fatalf("player games = %v", links)
	}
	games := readCSV(t, filepath.Join(dir, GamesFile))
	if len(games) != 2 || games[1][11] != "3" {
		t.Fatalf("games = %v", games)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 4 {
		t.Fatalf("expected exactly 4 files, got %d", len(entries))
	}
}

func TestNewCSVRepositoryRequiresDir(t *testing.T) {
	if _, err := NewCSVRepository(""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMemoryRepositoryDedupesPlayers(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := repo.SaveTables(ctx, sampleTables()); err != nil {
			t.Fatalf("SaveTables: %v", err)
		}
	}
	snap := repo.Snapshot()
	if len(snap.Features) != 4 || len(snap.PlayerGames) != 4 || len(snap.Games) != 2 {
		t.Fatalf("snapshot sizes: %d %d %d", len(snap.Features), len(snap.PlayerGames), len(snap.Games))
	}
	if len(snap.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(snap.Players))
	}
}

type failingRepo struct{ err error }

func (f failingRepo) SaveTables(context.Context, *domain.Tables) error { return f.err }

func TestMultiJoinsErrors(t *testing.T) {
	mem := NewMemoryRepository()
	boom := os.ErrPermission
	err := Multi(mem, nil, failingRepo{err: boom}).SaveTables(context.Background(), sampleTables())
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(mem.Snapshot().Features) != 2 {
		t.Fatalf("memory repo not written before failure")
	}
}
