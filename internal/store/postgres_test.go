package store

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestPostgresRepositoryRoundTrip(t *testing.T) {
	url := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	repo, err := OpenPostgres(ctx, url)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer repo.Close()
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	tables := sampleTables()
	tables.Games[0].GameID = 900001
	for i := range tables.Features {
		tables.Features[i].GameID = 900001
	}
	for i := range tables.PlayerGames {
		tables.PlayerGames[i].GameID = 900001
	}
	// saving twice must upsert, not duplicate
	for i := 0; i < 2; i++ {
		if err := repo.SaveTables(ctx, tables); err != nil {
			t.Fatalf("SaveTables #%d: %v", i+1, err)
		}
	}
	var n int
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chess_features WHERE game_id = $1`, 900001).Scan(&n); err != nil {
		t.Fatalf("count features: %v", err)
	}
	if n != 2 {
		t.Fatalf("feature rows = %d, want 2", n)
	}
}

func TestOpenPostgresRequiresURL(t *testing.T) {
	if _, err := OpenPostgres(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty DATABASE_URL")
	}
}
