package store

import (
	"context"
	"sync"

	"github.com/park285/cheese-features/internal/domain"
)

// MemoryRepository keeps saved tables in memory. Players are deduplicated
// across saves by player_id, keeping the first name seen.
type MemoryRepository struct {
	mu sync.RWMutex

	games       []domain.GameInfo
	features    []domain.FeatureVector
	playerGames []domain.PlayerGame
	players     []domain.Player
	playerIdx   map[string]int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{playerIdx: make(map[string]int)}
}

func (m *MemoryRepository) SaveTables(ctx context.Context, t *domain.Tables) error {
	if t == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games = append(m.games, t.Games...)
	m.features = append(m.features, t.Features...)
	m.playerGames = append(m.playerGames, t.PlayerGames...)
	for _, p := range t.Players {
		if _, ok := m.playerIdx[p.PlayerID]; ok {
			continue
		}
		m.playerIdx[p.PlayerID] = len(m.players)
		m.players = append(m.players, p)
	}
	return nil
}

// Snapshot returns a copy of everything saved so far.
func (m *MemoryRepository) Snapshot() *domain.Tables {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &domain.Tables{
		Games:       append([]domain.GameInfo(nil), m.games...),
		Features:    append([]domain.FeatureVector(nil), m.features...),
		PlayerGames: append([]domain.PlayerGame(nil), m.playerGames...),
		Players:     append([]domain.Player(nil), m.players...),
	}
}
