package engine

import "fmt"

// ApplyMove returns the board after m. The input position is never mutated.
// The move must already be legal; a move from an empty square panics.
func ApplyMove(pos Position, m Move, v *Variant) Board {
	b := pos.Board
	p := b.At(m.From)
	if p.IsEmpty() {
		panic(fmt.Sprintf("engine: apply move from empty square %+v", m.From))
	}

	if p.Kind == King {
		if opt, ok := castleFor(pos, m, p.Color); ok {
			nb := b.Clone()
			nb.Set(m.From, Piece{})
			nb.Set(opt.rook, Piece{})
			nb.Set(opt.kingTo, p)
			nb.Set(opt.rookTo, Piece{Kind: Rook, Color: p.Color})
			return nb
		}
	}

	nb := b.withPieceMoved(m.From, m.To)
	if p.Kind != Pawn {
		return nb
	}
	if isEnPassantCapture(pos, m, v) {
		nb.Set(Coord{Row: m.To.Row - forward(p.Color), Col: m.To.Col}, Piece{})
	}
	if m.To.Row == farRank(b, p.Color) {
		if kind := v.promotionKind(m.Promotion); kind != Pawn {
			nb.Set(m.To, Piece{Kind: kind, Color: p.Color})
		}
	}
	return nb
}

// castleFor recognises a king moving two files toward a rook it may still
// castle with.
func castleFor(pos Position, m Move, color Color) (castleOption, bool) {
	if m.From.Row != m.To.Row || abs(m.To.Col-m.From.Col) != 2 {
		return castleOption{}, false
	}
	for _, opt := range castleOptions(pos, m.From, color) {
		if opt.kingTo == m.To {
			return opt, true
		}
	}
	return castleOption{}, false
}

func isEnPassantCapture(pos Position, m Move, v *Variant) bool {
	return v.EnPassant &&
		pos.EnPassant != nil &&
		m.To == *pos.EnPassant &&
		m.To.Col != m.From.Col &&
		pos.Board.At(m.To).IsEmpty()
}

// isCapture reports whether m removes an enemy piece, en passant included.
func isCapture(pos Position, m Move, v *Variant) bool {
	if t := pos.Board.At(m.To); !t.IsEmpty() && t.Color != pos.Board.At(m.From).Color {
		return true
	}
	return pos.Board.At(m.From).Kind == Pawn && isEnPassantCapture(pos, m, v)
}
