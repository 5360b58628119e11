package domain

import "time"

// FeatureVector is one side's accumulated scores for one game.
type FeatureVector struct {
	GameID         int64  `json:"game_id"`
	PlayerID       string `json:"player_id"`
	Side           string `json:"side"`
	CenterControl  int    `json:"center_control_score"`
	PieceActivity  int    `json:"piece_activity_score"`
	KingSafety     int    `json:"king_safety_score"`
	AttackingMoves int    `json:"attacking_moves_score"`
	Captures       int    `json:"captures_score"`
	PawnStructure  int    `json:"pawn_structure_score"`
}

// PlayerGame links a player to the side they played in a game.
type PlayerGame struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Result   string `json:"result"`
	Color    string `json:"color"`
	GameID   int64  `json:"game_id"`
}

type Player struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

type GameInfo struct {
	GameID   int64     `json:"game_id"`
	RunID    string    `json:"run_id"`
	Event    string    `json:"event,omitempty"`
	Site     string    `json:"site,omitempty"`
	Date     string    `json:"date,omitempty"`
	Round    string    `json:"round,omitempty"`
	White    string    `json:"white"`
	Black    string    `json:"black"`
	Result   string    `json:"result"`
	ECO      string    `json:"eco,omitempty"`
	Opening  string    `json:"opening,omitempty"`
	Plies    int       `json:"plies"`
	ScoredAt time.Time `json:"scored_at"`
}

// Tables is the output of one extraction run.
type Tables struct {
	Games       []GameInfo      `json:"games"`
	Features    []FeatureVector `json:"features"`
	PlayerGames []PlayerGame    `json:"player_games"`
	Players     []Player        `json:"players"`
}
