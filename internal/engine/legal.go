package engine

// LegalMoves filters RawMoves through the variant's legality regime. Variants
// without king safety accept every pseudo-legal destination.
func LegalMoves(pos Position, from Coord, v *Variant) []Coord {
	raw := RawMoves(pos, from, v)
	if !v.KingSafety {
		return raw
	}
	p := pos.Board.At(from)
	legal := make([]Coord, 0, len(raw))
	for _, to := range raw {
		m := Move{From: from, To: to}
		if p.Kind == King {
			if opt, ok := castleFor(pos, m, p.Color); ok && !castleIsSafe(pos.Board, from, opt, p.Color) {
				continue
			}
		}
		next := ApplyMove(pos, m, v)
		if !InCheck(next, p.Color) {
			legal = append(legal, to)
		}
	}
	return legal
}

// castleIsSafe rejects castling out of check or across an attacked square.
// The landing square is covered by the general king-safety check.
func castleIsSafe(b Board, from Coord, opt castleOption, color Color) bool {
	enemy := color.Opponent()
	if Attacked(b, from, enemy) {
		return false
	}
	dir := 1
	if opt.kingTo.Col < from.Col {
		dir = -1
	}
	return !Attacked(b, from.Add(0, dir), enemy)
}

// IsLegal reports whether m is a legal move for the side to move.
func IsLegal(pos Position, m Move, v *Variant) bool {
	if !pos.Board.InBounds(m.From) || !pos.Board.InBounds(m.To) {
		return false
	}
	p := pos.Board.At(m.From)
	if p.IsEmpty() || p.Color != pos.ToMove {
		return false
	}
	for _, to := range LegalMoves(pos, m.From, v) {
		if to == m.To {
			return true
		}
	}
	return false
}

// HasLegalMove reports whether the side to move can move at all.
func HasLegalMove(pos Position, v *Variant) bool {
	b := pos.Board
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			p := b.Squares[r][c]
			if p.IsEmpty() || p.Color != pos.ToMove {
				continue
			}
			if len(LegalMoves(pos, Coord{Row: r, Col: c}, v)) > 0 {
				return true
			}
		}
	}
	return false
}

// AllLegalMoves lists every legal move of the side to move.
func AllLegalMoves(pos Position, v *Variant) []Move {
	var moves []Move
	pos.Board.each(func(from Coord, p Piece) {
		if p.Color != pos.ToMove {
			return
		}
		for _, to := range LegalMoves(pos, from, v) {
			moves = append(moves, Move{From: from, To: to})
		}
	})
	return moves
}
