package features

// Board is the position contract the scoring engine consumes. Implementations
// own the rules (move legality, attack geometry, check detection); the engine
// only queries them and advances them one ply at a time.
type Board interface {
	// Apply plays one move given in UCI or SAN. It must fail with an error
	// wrapping ErrIllegalMove when the move is not legal in the current position.
	Apply(move string) error
	// Turn reports the side to move.
	Turn() Side

	Occupant(sq Square) (Piece, bool)
	// AttackedSquares lists the squares the piece on sq attacks. Not filtered
	// for legality: pinned pieces still attack.
	AttackedSquares(sq Square) []Square
	// Attackers lists squares holding pieces of side that attack sq.
	Attackers(side Side, sq Square) []Square
	KingSquare(side Side) (Square, bool)
	PawnSquares(side Side) []Square
	// PieceSquares lists every square occupied by a piece of side.
	PieceSquares(side Side) []Square

	// LegalMoves lists the moves available to the side to move.
	LegalMoves() []Move
	IsCapture(m Move) bool
	// InCheck reports whether the side to move is in check.
	InCheck() bool
	LastMove() (Move, bool)
}
