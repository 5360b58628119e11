package features

// Scores is the running total of the six per-side features for one game.
type Scores struct {
	CenterControl  int
	PieceActivity  int
	KingSafety     int
	AttackingMoves int
	Captures       int
	PawnStructure  int
}

func (s *Scores) Add(d Scores) {
	s.CenterControl += d.CenterControl
	s.PieceActivity += d.PieceActivity
	s.KingSafety += d.KingSafety
	s.AttackingMoves += d.AttackingMoves
	s.Captures += d.Captures
	s.PawnStructure += d.PawnStructure
}

func (s Scores) IsZero() bool { return s == Scores{} }
