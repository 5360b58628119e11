package extract

import "github.com/park285/cheese-features/internal/domain"

// Registry collects distinct players in first-seen order. The first display
// name recorded for an id is kept.
type Registry struct {
	index   map[string]int
	players []domain.Player
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add records a player and reports whether the id was new.
func (r *Registry) Add(p domain.Player) bool {
	if _, ok := r.index[p.PlayerID]; ok {
		return false
	}
	r.index[p.PlayerID] = len(r.players)
	r.players = append(r.players, p)
	return true
}

func (r *Registry) Players() []domain.Player {
	return append([]domain.Player(nil), r.players...)
}
