package engine

import (
	"testing"
)

func mustLookup(id string) *Variant {
	v, err := Lookup(id)
	if err != nil {
		panic(err)
	}
	return v
}

func sq(t *testing.T, label string) Coord {
	t.Helper()
	c, err := ParseSquare(label, 8)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", label, err)
	}
	return c
}

func mv(t *testing.T, from, to string) Move {
	t.Helper()
	return Move{From: sq(t, from), To: sq(t, to)}
}

func positionOf(t *testing.T, layout string, toMove Color) Position {
	t.Helper()
	b, err := ParseLayout(layout)
	if err != nil {
		t.Fatalf("ParseLayout(%q): %v", layout, err)
	}
	return Position{Board: b, ToMove: toMove, Castling: initialCastlingRights(b)}
}

func gameOf(t *testing.T, variantID, layout string, toMove Color) *Game {
	t.Helper()
	g, err := NewGameFromLayout(variantID, layout, toMove)
	if err != nil {
		t.Fatalf("NewGameFromLayout(%q, %q): %v", variantID, layout, err)
	}
	return g
}

func play(t *testing.T, g *Game, moves ...[2]string) Outcome {
	t.Helper()
	var out Outcome
	for _, m := range moves {
		var err error
		out, err = g.Propose(mv(t, m[0], m[1]))
		if err != nil {
			t.Fatalf("Propose(%s-%s): %v", m[0], m[1], err)
		}
	}
	return out
}

func coordLess(a, b Coord) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}

func labels(cs []Coord, rows int) map[string]bool {
	out := make(map[string]bool, len(cs))
	for _, c := range cs {
		out[c.Label(rows)] = true
	}
	return out
}
