package features_test

import (
	"errors"
	"testing"

	"github.com/park285/cheese-features/internal/chess/board"
	"github.com/park285/cheese-features/internal/features"
)

func score(t *testing.T, moves []string, opts ...features.Option) (features.Scores, features.Scores) {
	t.Helper()
	white, black, err := features.ScoreGame(board.New(), moves, opts...)
	if err != nil {
		t.Fatalf("ScoreGame(%v): %v", moves, err)
	}
	return white, black
}

func TestScoreGameNoMoves(t *testing.T) {
	white, black := score(t, nil)
	if !white.IsZero() || !black.IsZero() {
		t.Fatalf("expected zero vectors, got %+v %+v", white, black)
	}
}

func TestScoreGameOnePlyEach(t *testing.T) {
	white, black := score(t, []string{"e4", "e5"})
	wantWhite := features.Scores{CenterControl: 2, PieceActivity: 45, KingSafety: 8}
	wantBlack := features.Scores{CenterControl: 3, PieceActivity: 45, KingSafety: 8}
	if white != wantWhite {
		t.Fatalf("white = %+v, want %+v", white, wantWhite)
	}
	if black != wantBlack {
		t.Fatalf("black = %+v, want %+v", black, wantBlack)
	}
}

func TestScoreGameCountsOpponentCaptures(t *testing.T) {
	_, black := score(t, []string{"e4", "d5"})
	// after 1...d5 only exd5 captures, and it is white's move
	if black.Captures != 1 {
		t.Fatalf("black captures = %d, want 1", black.Captures)
	}
}

func TestScoreGameCheckingMove(t *testing.T) {
	white, _ := score(t, []string{"e4", "f5", "Qh5+"})
	// Qh5: depth 18, f5 pawn 1, king 11 less Qd8 = 10, check 10
	if white.AttackingMoves != 39 {
		t.Fatalf("white attacking = %d, want 39", white.AttackingMoves)
	}
}

func TestScoreGameAdvancedCapture(t *testing.T) {
	white, _ := score(t, []string{"e4", "d5", "exd5"})
	// pawn on d5 hits empty c6 and e6, two points of depth each
	if white.AttackingMoves != 4 {
		t.Fatalf("white attacking = %d, want 4", white.AttackingMoves)
	}
}

func TestScoreGameDeterministic(t *testing.T) {
	moves := []string{"e4", "c5", "Nf3", "d6", "d4", "cxd4", "Nxd4", "Nf6", "Nc3", "a6", "Be3", "e5", "Nb3", "Be6", "f3", "Be7", "Qd2", "O-O", "O-O-O", "Nbd7"}
	w1, b1 := score(t, moves)
	w2, b2 := score(t, moves)
	if w1 != w2 || b1 != b2 {
		t.Fatalf("replay not deterministic: %+v/%+v vs %+v/%+v", w1, b1, w2, b2)
	}
	if w1.IsZero() || b1.IsZero() {
		t.Fatalf("expected non-zero vectors for both sides")
	}
}

func TestScoreGameAttributesMover(t *testing.T) {
	var movers []features.Side
	var sum [2]features.Scores
	hook := features.WithPlyHook(func(ply int, mover features.Side, delta features.Scores) {
		if ply != len(movers)+1 {
			t.Fatalf("ply %d out of order", ply)
		}
		movers = append(movers, mover)
		sum[mover].Add(delta)
	})
	white, black := score(t, []string{"d4", "d5", "c4", "e6", "Nc3"}, hook)
	want := []features.Side{features.White, features.Black, features.White, features.Black, features.White}
	if len(movers) != len(want) {
		t.Fatalf("hook called %d times", len(movers))
	}
	for i := range want {
		if movers[i] != want[i] {
			t.Fatalf("ply %d attributed to %s", i+1, movers[i])
		}
	}
	if sum[features.White] != white || sum[features.Black] != black {
		t.Fatalf("hook deltas do not add up to totals")
	}
}

func TestScoreGameIllegalMove(t *testing.T) {
	white, black, err := features.ScoreGame(board.New(), []string{"e4", "e4", "Nf3"})
	if !errors.Is(err, features.ErrIllegalMove) {
		t.Fatalf("err = %v, want ErrIllegalMove", err)
	}
	var re *features.ReplayError
	if !errors.As(err, &re) {
		t.Fatalf("err %T is not *ReplayError", err)
	}
	if re.Ply != 2 || re.Side != features.Black || re.Move != "e4" {
		t.Fatalf("replay error = %+v", re)
	}
	if !white.IsZero() || !black.IsZero() {
		t.Fatalf("partial scores returned")
	}
}

func TestScoreGameMissingOpponentKing(t *testing.T) {
	b, err := board.FromFEN("8/8/8/8/8/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	white, black, err := features.ScoreGame(b, []string{"e4"})
	if !errors.Is(err, features.ErrMissingKing) {
		t.Fatalf("err = %v, want ErrMissingKing", err)
	}
	var re *features.ReplayError
	if !errors.As(err, &re) || re.Side != features.Black || re.Ply != 0 {
		t.Fatalf("replay error = %+v", re)
	}
	if !white.IsZero() || !black.IsZero() {
		t.Fatalf("partial scores returned")
	}
}
