package features

import "fmt"

// Side identifies the player a score is attributed to.
type Side uint8

const (
	White Side = iota
	Black
)

func (s Side) Other() Side {
	if s == White {
		return Black
	}
	return White
}

func (s Side) String() string {
	if s == White {
		return "white"
	}
	return "black"
}

// Square indexes the board from a1 (0) to h8 (63), rank-major.
type Square int8

const NoSquare Square = -1

func NewSquare(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(rank*8 + file)
}

func (sq Square) File() int { return int(sq) % 8 }
func (sq Square) Rank() int { return int(sq) / 8 }

func (sq Square) String() string {
	if sq < 0 || sq > 63 {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+sq.File(), sq.Rank()+1)
}

// PieceType ordinals start at Pawn=1 and end at King=6; the attacking-moves
// piece value depends on this order.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

type Piece struct {
	Type PieceType
	Side Side
}

// Move is a from/to pair plus optional promotion, as reported by the board.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
}

func (m Move) String() string {
	s := m.From.String() + m.To.String()
	switch m.Promotion {
	case Knight:
		s += "n"
	case Bishop:
		s += "b"
	case Rook:
		s += "r"
	case Queen:
		s += "q"
	}
	return s
}

// CentralSquares are d4, e4, d5 and e5.
var CentralSquares = [4]Square{
	NewSquare(3, 3),
	NewSquare(4, 3),
	NewSquare(3, 4),
	NewSquare(4, 4),
}
