package engine

import (
	"testing"

	"github.com/benbeisheim/variantchess-backend/internal/testutil"
)

func TestApplyMoveDoesNotMutateInput(t *testing.T) {
	v := mustLookup("classic")
	pos := v.InitialPosition()
	before := pos.Board.Layout()

	next := ApplyMove(pos, mv(t, "e2", "e4"), v)

	if pos.Board.Layout() != before {
		t.Error("input board changed")
	}
	if !next.At(sq(t, "e2")).IsEmpty() || !next.At(sq(t, "e4")).Is(Pawn, White) {
		t.Errorf("unexpected result %s", next.Layout())
	}
}

func TestApplyMoveKingsideCastle(t *testing.T) {
	v := mustLookup("classic")
	pos := positionOf(t, "4k3/8/8/8/8/8/8/4K2R", White)

	next := ApplyMove(pos, mv(t, "e1", "g1"), v)

	testutil.AssertEqual(t, next.At(sq(t, "g1")), NewPiece(King, White))
	testutil.AssertEqual(t, next.At(sq(t, "f1")), NewPiece(Rook, White))
	if !next.At(sq(t, "h1")).IsEmpty() || !next.At(sq(t, "e1")).IsEmpty() {
		t.Errorf("castle left pieces behind: %s", next.Layout())
	}
}

func TestApplyMoveQueensideCastle(t *testing.T) {
	v := mustLookup("classic")
	pos := positionOf(t, "r3k3/8/8/8/8/8/8/4K3", Black)

	next := ApplyMove(pos, mv(t, "e8", "c8"), v)

	testutil.AssertEqual(t, next.At(sq(t, "c8")), NewPiece(King, Black))
	testutil.AssertEqual(t, next.At(sq(t, "d8")), NewPiece(Rook, Black))
	if !next.At(sq(t, "a8")).IsEmpty() {
		t.Errorf("rook still on a8: %s", next.Layout())
	}
}

func TestApplyMoveCastleOnSmallBoard(t *testing.T) {
	v := mustLookup("micro-chess")
	pos := positionOf(t, "k3/4/4/4/R2K", White)
	from, _ := ParseSquare("d1", v.Rows)
	to, _ := ParseSquare("b1", v.Rows)

	next := ApplyMove(pos, Move{From: from, To: to}, v)

	if got, want := next.Layout(), "k.../..../..../..../.KR."; got != want {
		t.Errorf("Layout() = %q, want %q", got, want)
	}
}

func TestApplyMoveEnPassantRemovesPassedPawn(t *testing.T) {
	v := mustLookup("classic")
	pos := positionOf(t, "4k3/8/8/3pP3/8/8/8/4K3", White)
	target := sq(t, "d6")
	pos.EnPassant = &target

	next := ApplyMove(pos, mv(t, "e5", "d6"), v)

	if !next.At(sq(t, "d5")).IsEmpty() {
		t.Error("captured pawn still on d5")
	}
	testutil.AssertEqual(t, next.At(sq(t, "d6")), NewPiece(Pawn, White))
}

func TestApplyMovePromotion(t *testing.T) {
	tests := []struct {
		name    string
		variant string
		request Kind
		want    Piece
	}{
		{"manual knight", "classic", Knight, NewPiece(Knight, White)},
		{"manual default", "classic", NoKind, NewPiece(Queen, White)},
		{"manual rejects king", "classic", King, NewPiece(Queen, White)},
		{"auto ignores request", "king-hunt", Rook, NewPiece(Queen, White)},
		{"none keeps pawn", "pawn-war", Queen, NewPiece(Pawn, White)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustLookup(tt.variant)
			pos := positionOf(t, "7k/P7/8/8/8/8/8/7K", White)
			m := mv(t, "a7", "a8")
			m.Promotion = tt.request

			next := ApplyMove(pos, m, v)

			testutil.AssertEqual(t, next.At(sq(t, "a8")), tt.want)
		})
	}
}

func TestApplyMoveBlackPromotesOnTallBoard(t *testing.T) {
	v := mustLookup("faraway-chess")
	pos := positionOf(t, "4k3/8/8/8/8/8/8/p7/4K3", Black)
	from, _ := ParseSquare("a2", v.Rows)
	to, _ := ParseSquare("a1", v.Rows)

	next := ApplyMove(pos, Move{From: from, To: to}, v)

	testutil.AssertEqual(t, next.At(to), NewPiece(Queen, Black))
}

func TestApplyMoveFromEmptySquarePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("moving from an empty square did not panic")
		}
	}()
	v := mustLookup("classic")
	ApplyMove(v.InitialPosition(), mv(t, "e4", "e5"), v)
}
