package extract

import (
	"github.com/park285/cheese-features/internal/domain"
	"github.com/park285/cheese-features/internal/features"
	"github.com/park285/cheese-features/internal/pgn"
)

var sideTags = map[features.Side]struct{ id, name string }{
	features.White: {id: "WhiteId", name: "White"},
	features.Black: {id: "BlackId", name: "Black"},
}

// playerDetails reads one side's identity from the game's tag section.
func playerDetails(g *pgn.Game, side features.Side, unknownID string, gameID int64) domain.PlayerGame {
	tags := sideTags[side]
	return domain.PlayerGame{
		PlayerID: g.TagOr(tags.id, unknownID),
		Name:     g.TagOr(tags.name, "?"),
		Result:   gameResult(g),
		Color:    side.String(),
		GameID:   gameID,
	}
}

func gameResult(g *pgn.Game) string {
	if v := g.TagOr("Result", ""); v != "" {
		return v
	}
	if g.Result != "" {
		return g.Result
	}
	return pgn.ResultNone
}

func featureRow(gameID int64, link domain.PlayerGame, s features.Scores) domain.FeatureVector {
	return domain.FeatureVector{
		GameID:         gameID,
		PlayerID:       link.PlayerID,
		Side:           link.Color,
		CenterControl:  s.CenterControl,
		PieceActivity:  s.PieceActivity,
		KingSafety:     s.KingSafety,
		AttackingMoves: s.AttackingMoves,
		Captures:       s.Captures,
		PawnStructure:  s.PawnStructure,
	}
}
