package features

const checkBonus = 10

// Evaluate runs the six evaluators for side against the current position.
func Evaluate(b Board, side Side) (Scores, error) {
	king, err := KingSafety(b, side)
	if err != nil {
		return Scores{}, err
	}
	return Scores{
		CenterControl:  CenterControl(b, side),
		PieceActivity:  PieceActivity(b, side),
		KingSafety:     king,
		AttackingMoves: AttackingMoves(b, side),
		Captures:       Captures(b, side),
		PawnStructure:  PawnStructure(b, side),
	}, nil
}

// CenterControl counts one per occupied central square plus every attacker
// of side on each central square.
func CenterControl(b Board, side Side) int {
	score := 0
	for _, sq := range CentralSquares {
		if _, ok := b.Occupant(sq); ok {
			score++
		}
		score += len(b.Attackers(side, sq))
	}
	return score
}

// PieceActivity sums the attack counts of all of side's pieces.
func PieceActivity(b Board, side Side) int {
	score := 0
	for _, sq := range b.PieceSquares(side) {
		score += len(b.AttackedSquares(sq))
	}
	return score
}

// KingSafety adds own guards of the king square, subtracts enemy attackers of
// it, and adds one per defended own pawn.
func KingSafety(b Board, side Side) (int, error) {
	king, ok := b.KingSquare(side)
	if !ok {
		return 0, ErrMissingKing
	}
	score := len(b.Attackers(side, king))
	score -= len(b.Attackers(side.Other(), king))
	for _, sq := range b.PawnSquares(side) {
		if len(b.Attackers(side, sq)) > 0 {
			score++
		}
	}
	return score, nil
}

// AttackingMoves scores only the last move played, and only when the piece
// now on its destination belongs to side.
func AttackingMoves(b Board, side Side) int {
	last, ok := b.LastMove()
	if !ok {
		return 0
	}
	moved, ok := b.Occupant(last.To)
	if !ok || moved.Side != side {
		return 0
	}
	enemy := side.Other()
	score := 0
	for _, sq := range b.AttackedSquares(last.To) {
		if target, ok := b.Occupant(sq); ok && target.Side != side {
			value := pieceValue(target.Type)
			if defenders := len(b.Attackers(enemy, sq)); defenders > 0 {
				value -= defenders
			}
			score += value
		}
		score += depthBonus(sq, side)
	}
	if b.InCheck() {
		score += checkBonus
	}
	return score
}

// Captures counts capturing moves in the current legal-move list. After a ply
// that list belongs to the mover's opponent; side is deliberately unused.
func Captures(b Board, _ Side) int {
	n := 0
	for _, m := range b.LegalMoves() {
		if b.IsCapture(m) {
			n++
		}
	}
	return n
}

// PawnStructure penalises doubled and isolated pawns of side. Never positive.
func PawnStructure(b Board, side Side) int {
	var files [8]int
	for _, sq := range b.PawnSquares(side) {
		files[sq.File()]++
	}
	score := 0
	for file, count := range files {
		if count > 1 {
			score -= count - 1
		}
		if count == 0 {
			continue
		}
		left := file == 0 || files[file-1] == 0
		right := file == 7 || files[file+1] == 0
		if left && right {
			score -= count
		}
	}
	return score
}

func pieceValue(pt PieceType) int {
	return 1 + (int(pt)-1)*2
}

// depthBonus rewards attacks past the fourth rank counted from side's back rank.
func depthBonus(sq Square, side Side) int {
	advance := sq.Rank()
	if side == Black {
		advance = 7 - advance
	}
	if advance <= 4 {
		return 0
	}
	return (advance - 4) * 2
}
