// Package board adapts github.com/corentings/chess/v2 to the features.Board
// contract. The rules engine decides legality and applies moves; attack
// geometry is computed here from the board snapshot after every ply.
package board

import (
	"fmt"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"

	"github.com/park285/cheese-features/internal/features"
)

var (
	ecoBook = sync.OnceValue(opening.NewBookECO)
	ecoMu   sync.Mutex
)

// Board is a single game's position. It is not safe for concurrent use.
type Board struct {
	game   *nchess.Game
	pieces [64]features.Piece
	last   *features.Move

	legal    []features.Move
	captures map[features.Move]bool
	legalOK  bool
}

var _ features.Board = (*Board)(nil)

// New returns a board at the standard start position.
func New() *Board {
	return newBoard(nchess.NewGame())
}

// FromFEN returns a board at the given position. Empty or "startpos" means the
// standard start position.
func FromFEN(fen string) (*Board, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" || strings.EqualFold(fen, "startpos") {
		return New(), nil
	}
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return newBoard(nchess.NewGame(opt)), nil
}

func newBoard(game *nchess.Game) *Board {
	b := &Board{game: game}
	b.sync()
	return b
}

// Apply plays a move given in UCI (preferred) or SAN.
func (b *Board) Apply(move string) error {
	raw := strings.TrimSpace(move)
	if raw == "" {
		return fmt.Errorf("%w: empty move", features.ErrIllegalMove)
	}
	pos := b.game.Position()
	mv, err := decodeMove(pos, raw)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", features.ErrIllegalMove, raw, err)
	}
	if !isLegal(pos, mv) {
		return fmt.Errorf("%w: %q not legal in %s", features.ErrIllegalMove, raw, pos.String())
	}
	if err := b.game.Move(mv, nil); err != nil {
		return fmt.Errorf("%w: %q: %v", features.ErrIllegalMove, raw, err)
	}
	last := features.Move{From: toSquare(mv.S1()), To: toSquare(mv.S2()), Promotion: toPieceType(mv.Promo())}
	b.last = &last
	b.sync()
	return nil
}

func decodeMove(pos *nchess.Position, raw string) (*nchess.Move, error) {
	if mv, err := (nchess.UCINotation{}).Decode(pos, strings.ToLower(raw)); err == nil {
		return mv, nil
	}
	return nchess.AlgebraicNotation{}.Decode(pos, cleanSAN(raw))
}

// cleanSAN drops annotation glyphs and normalises zero-castling.
func cleanSAN(s string) string {
	s = strings.TrimRight(s, "!?")
	switch strings.TrimRight(s, "+#") {
	case "0-0":
		s = "O-O" + s[3:]
	case "0-0-0":
		s = "O-O-O" + s[5:]
	}
	return s
}

func isLegal(pos *nchess.Position, mv *nchess.Move) bool {
	for _, v := range pos.ValidMoves() {
		if v.S1() == mv.S1() && v.S2() == mv.S2() && v.Promo() == mv.Promo() {
			return true
		}
	}
	return false
}

func (b *Board) sync() {
	b.pieces = [64]features.Piece{}
	for sq, p := range b.game.Position().Board().SquareMap() {
		pt := toPieceType(p.Type())
		if pt == features.NoPieceType {
			continue
		}
		b.pieces[toSquare(sq)] = features.Piece{Type: pt, Side: toSide(p.Color())}
	}
	b.legal = b.legal[:0]
	b.captures = nil
	b.legalOK = false
}

func (b *Board) Turn() features.Side {
	return toSide(b.game.Position().Turn())
}

// FEN returns the current position in Forsyth-Edwards notation.
func (b *Board) FEN() string {
	return b.game.Position().String()
}

// Plies is the number of moves applied since the start position.
func (b *Board) Plies() int {
	return len(b.game.Moves())
}

func (b *Board) Occupant(sq features.Square) (features.Piece, bool) {
	if sq < 0 || sq > 63 {
		return features.Piece{}, false
	}
	p := b.pieces[sq]
	return p, p.Type != features.NoPieceType
}

func (b *Board) AttackedSquares(sq features.Square) []features.Square {
	return attacksFrom(&b.pieces, sq)
}

func (b *Board) Attackers(side features.Side, target features.Square) []features.Square {
	var out []features.Square
	for i := range b.pieces {
		p := b.pieces[i]
		if p.Type == features.NoPieceType || p.Side != side {
			continue
		}
		if attacks(&b.pieces, features.Square(i), target) {
			out = append(out, features.Square(i))
		}
	}
	return out
}

func (b *Board) KingSquare(side features.Side) (features.Square, bool) {
	for i, p := range b.pieces {
		if p.Type == features.King && p.Side == side {
			return features.Square(i), true
		}
	}
	return features.NoSquare, false
}

func (b *Board) PawnSquares(side features.Side) []features.Square {
	return b.squaresOf(side, features.Pawn)
}

func (b *Board) PieceSquares(side features.Side) []features.Square {
	return b.squaresOf(side, features.NoPieceType)
}

// squaresOf lists side's squares holding pt, or any piece when pt is NoPieceType.
func (b *Board) squaresOf(side features.Side, pt features.PieceType) []features.Square {
	var out []features.Square
	for i, p := range b.pieces {
		if p.Type == features.NoPieceType || p.Side != side {
			continue
		}
		if pt != features.NoPieceType && p.Type != pt {
			continue
		}
		out = append(out, features.Square(i))
	}
	return out
}

func (b *Board) LegalMoves() []features.Move {
	b.ensureLegal()
	return append([]features.Move(nil), b.legal...)
}

func (b *Board) IsCapture(m features.Move) bool {
	b.ensureLegal()
	return b.captures[m]
}

func (b *Board) ensureLegal() {
	if b.legalOK {
		return
	}
	b.captures = make(map[features.Move]bool)
	for _, mv := range b.game.Position().ValidMoves() {
		m := features.Move{From: toSquare(mv.S1()), To: toSquare(mv.S2()), Promotion: toPieceType(mv.Promo())}
		b.legal = append(b.legal, m)
		if mv.HasTag(nchess.Capture) || mv.HasTag(nchess.EnPassant) {
			b.captures[m] = true
		}
	}
	b.legalOK = true
}

func (b *Board) InCheck() bool {
	turn := b.Turn()
	king, ok := b.KingSquare(turn)
	if !ok {
		return false
	}
	return len(b.Attackers(turn.Other(), king)) > 0
}

func (b *Board) LastMove() (features.Move, bool) {
	if b.last == nil {
		return features.Move{}, false
	}
	return *b.last, true
}

// Opening returns the ECO code and name matching the moves played so far.
func (b *Board) Opening() (code, title string) {
	book := ecoBook()
	if book == nil {
		return "", ""
	}
	ecoMu.Lock()
	defer ecoMu.Unlock()
	if eco := book.Find(b.game.Moves()); eco != nil {
		return eco.Code(), eco.Title()
	}
	return "", ""
}

func toSquare(sq nchess.Square) features.Square {
	return features.NewSquare(int(sq.File()), int(sq.Rank()))
}

func toSide(c nchess.Color) features.Side {
	if c == nchess.Black {
		return features.Black
	}
	return features.White
}

func toPieceType(pt nchess.PieceType) features.PieceType {
	switch pt {
	case nchess.Pawn:
		return features.Pawn
	case nchess.Knight:
		return features.Knight
	case nchess.Bishop:
		return features.Bishop
	case nchess.Rook:
		return features.Rook
	case nchess.Queen:
		return features.Queen
	case nchess.King:
		return features.King
	default:
		return features.NoPieceType
	}
}
