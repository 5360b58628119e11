package board

import "github.com/park285/cheese-features/internal/features"

type delta struct{ df, dr int }

var (
	knightDeltas = []delta{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingDeltas   = []delta{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookDirs     = []delta{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs   = []delta{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs    = append(append([]delta(nil), rookDirs...), bishopDirs...)
)

// attacksFrom lists the squares attacked by the piece on from. Pawns attack
// their forward diagonals whether or not anything stands there; sliders stop
// at, and include, the first occupied square.
func attacksFrom(pieces *[64]features.Piece, from features.Square) []features.Square {
	if from < 0 || from > 63 {
		return nil
	}
	p := pieces[from]
	switch p.Type {
	case features.Pawn:
		dr := 1
		if p.Side == features.Black {
			dr = -1
		}
		return jumps(from, []delta{{-1, dr}, {1, dr}})
	case features.Knight:
		return jumps(from, knightDeltas)
	case features.King:
		return jumps(from, kingDeltas)
	case features.Bishop:
		return rays(pieces, from, bishopDirs)
	case features.Rook:
		return rays(pieces, from, rookDirs)
	case features.Queen:
		return rays(pieces, from, queenDirs)
	default:
		return nil
	}
}

func attacks(pieces *[64]features.Piece, from, target features.Square) bool {
	for _, sq := range attacksFrom(pieces, from) {
		if sq == target {
			return true
		}
	}
	return false
}

func jumps(from features.Square, ds []delta) []features.Square {
	out := make([]features.Square, 0, len(ds))
	for _, d := range ds {
		if sq := features.NewSquare(from.File()+d.df, from.Rank()+d.dr); sq != features.NoSquare {
			out = append(out, sq)
		}
	}
	return out
}

func rays(pieces *[64]features.Piece, from features.Square, dirs []delta) []features.Square {
	var out []features.Square
	for _, d := range dirs {
		f, r := from.File()+d.df, from.Rank()+d.dr
		for {
			sq := features.NewSquare(f, r)
			if sq == features.NoSquare {
				break
			}
			out = append(out, sq)
			if pieces[sq].Type != features.NoPieceType {
				break
			}
			f += d.df
			r += d.dr
		}
	}
	return out
}
