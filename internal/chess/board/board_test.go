package board

import (
	"errors"
	"strings"
	"testing"

	"github.com/park285/cheese-features/internal/features"
)

func sq(name string) features.Square {
	return features.NewSquare(int(name[0]-'a'), int(name[1]-'1'))
}

func mustApply(t *testing.T, b *Board, moves ...string) {
	t.Helper()
	for _, mv := range moves {
		if err := b.Apply(mv); err != nil {
			t.Fatalf("Apply(%q): %v", mv, err)
		}
	}
}

func TestStartPositionQueries(t *testing.T) {
	b := New()
	if b.Turn() != features.White {
		t.Fatalf("expected white to move")
	}
	if got := len(b.LegalMoves()); got != 20 {
		t.Fatalf("legal moves at start = %d, want 20", got)
	}
	if got := len(b.AttackedSquares(sq("b1"))); got != 3 {
		t.Fatalf("knight b1 attacks %d squares, want 3", got)
	}
	if got := len(b.AttackedSquares(sq("d1"))); got != 5 {
		t.Fatalf("queen d1 attacks %d squares, want 5", got)
	}
	if got := len(b.AttackedSquares(sq("e4"))); got != 0 {
		t.Fatalf("empty square attacks %d squares", got)
	}
	if k, ok := b.KingSquare(features.Black); !ok || k != sq("e8") {
		t.Fatalf("black king = %v %v", k, ok)
	}
	if got := len(b.PawnSquares(features.White)); got != 8 {
		t.Fatalf("white pawns = %d", got)
	}
	if got := len(b.PieceSquares(features.Black)); got != 16 {
		t.Fatalf("black pieces = %d", got)
	}
	if _, ok := b.LastMove(); ok {
		t.Fatalf("expected no last move at start")
	}
	if b.InCheck() {
		t.Fatalf("start position is not check")
	}
}

func TestAttackersCountsEveryPiece(t *testing.T) {
	b := New()
	// d2 is covered by Nb1, Bc1, Qd1 and Ke1.
	if got := len(b.Attackers(features.White, sq("d2"))); got != 4 {
		t.Fatalf("white attackers of d2 = %d, want 4", got)
	}
	if got := len(b.Attackers(features.Black, sq("d2"))); got != 0 {
		t.Fatalf("black attackers of d2 = %d, want 0", got)
	}
}

func TestApplyAcceptsUCIAndSAN(t *testing.T) {
	b := New()
	mustApply(t, b, "e2e4", "e5", "Nf3", "b8c6", "Bb5")
	last, ok := b.LastMove()
	if !ok || last.From != sq("f1") || last.To != sq("b5") {
		t.Fatalf("last move = %+v %v", last, ok)
	}
	if b.Turn() != features.Black {
		t.Fatalf("expected black to move")
	}
	if b.Plies() != 5 {
		t.Fatalf("plies = %d", b.Plies())
	}
	code, title := b.Opening()
	if !strings.HasPrefix(code, "C6") || title == "" {
		t.Fatalf("opening = %q %q", code, title)
	}
}

func TestApplyCastlingVariants(t *testing.T) {
	b := New()
	mustApply(t, b, "e4", "e5", "Nf3", "Nc6", "Bc4", "Bc5", "0-0", "Nf6", "d3", "O-O")
	if p, ok := b.Occupant(sq("g1")); !ok || p.Type != features.King {
		t.Fatalf("white king not on g1: %+v", p)
	}
	if p, ok := b.Occupant(sq("f8")); !ok || p.Type != features.Rook || p.Side != features.Black {
		t.Fatalf("black rook not on f8: %+v", p)
	}
}

func TestApplyRejectsIllegal(t *testing.T) {
	for _, mv := range []string{"e5", "e2e5", "Nd4", "zz", ""} {
		b := New()
		err := b.Apply(mv)
		if !errors.Is(err, features.ErrIllegalMove) {
			t.Fatalf("Apply(%q) err = %v, want ErrIllegalMove", mv, err)
		}
		if _, ok := b.LastMove(); ok {
			t.Fatalf("rejected move %q was recorded", mv)
		}
	}
}

func TestCapturesAndCheck(t *testing.T) {
	b := New()
	mustApply(t, b, "e4", "d5")
	captures := 0
	for _, m := range b.LegalMoves() {
		if b.IsCapture(m) {
			captures++
		}
	}
	if captures != 1 {
		t.Fatalf("captures after 1.e4 d5 = %d, want 1", captures)
	}

	b = New()
	mustApply(t, b, "e4", "f5", "Qh5+")
	if !b.InCheck() {
		t.Fatalf("expected black in check after Qh5+")
	}
}

func TestEnPassantIsCapture(t *testing.T) {
	b := New()
	mustApply(t, b, "e4", "a6", "e5", "d5")
	found := false
	for _, m := range b.LegalMoves() {
		if m.From == sq("e5") && m.To == sq("d6") {
			found = b.IsCapture(m)
		}
	}
	if !found {
		t.Fatalf("exd6 en passant not classified as capture")
	}
}

func TestSliderStopsAtBlocker(t *testing.T) {
	b, err := FromFEN("4k3/8/8/8/1p6/8/8/R3K3 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	// Ra1 sees a2..a8 up and b1..d1 right, stopping at e1.
	if got := len(b.AttackedSquares(sq("a1"))); got != 11 {
		t.Fatalf("rook a1 attacks %d squares, want 11", got)
	}
	// Black pawn b4 attacks a3 and c3.
	got := b.AttackedSquares(sq("b4"))
	if len(got) != 2 || got[0] != sq("a3") || got[1] != sq("c3") {
		t.Fatalf("pawn b4 attacks %v", got)
	}
}

func TestFromFENStartpos(t *testing.T) {
	b, err := FromFEN("startpos")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	if len(b.PieceSquares(features.White)) != 16 {
		t.Fatalf("startpos not loaded")
	}
	if _, err := FromFEN("not a fen"); err == nil {
		t.Fatalf("expected error for bad fen")
	}
}
