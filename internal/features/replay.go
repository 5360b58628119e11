package features

// PlyHook observes each ply's contribution after it is folded into the totals.
type PlyHook func(ply int, mover Side, delta Scores)

type replayOptions struct {
	hook PlyHook
}

type Option func(*replayOptions)

func WithPlyHook(h PlyHook) Option {
	return func(o *replayOptions) { o.hook = h }
}

// ScoreGame replays moves on b in order and returns each side's accumulated
// scores. b must be at the game's start position and is left at its final
// position. Any failure aborts the whole game; no partial scores are returned.
// Both kings must be on the board before the first move.
func ScoreGame(b Board, moves []string, opts ...Option) (white, black Scores, err error) {
	var o replayOptions
	for _, opt := range opts {
		opt(&o)
	}

	for _, side := range []Side{White, Black} {
		if _, ok := b.KingSquare(side); !ok {
			return Scores{}, Scores{}, &ReplayError{Ply: 0, Side: side, Err: ErrMissingKing}
		}
	}

	var totals [2]Scores
	for i, mv := range moves {
		ply := i + 1
		// Attribute to the side on turn before the move, not after.
		mover := b.Turn()
		if err := b.Apply(mv); err != nil {
			return Scores{}, Scores{}, &ReplayError{Ply: ply, Move: mv, Side: mover, Err: err}
		}
		delta, err := Evaluate(b, mover)
		if err != nil {
			return Scores{}, Scores{}, &ReplayError{Ply: ply, Move: mv, Side: mover, Err: err}
		}
		totals[mover].Add(delta)
		if o.hook != nil {
			o.hook(ply, mover, delta)
		}
	}
	return totals[White], totals[Black], nil
}
