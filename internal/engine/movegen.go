package engine

var (
	knightOffsets = []Coord{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = []Coord{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	rookDirs      = []Coord{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	bishopDirs    = []Coord{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	queenDirs     = append(append([]Coord{}, rookDirs...), bishopDirs...)
)

// RawMoves lists every pseudo-legal destination for the piece on from,
// ignoring whether the mover's own king is left attacked.
func RawMoves(pos Position, from Coord, v *Variant) []Coord {
	b := pos.Board
	p := b.At(from)
	if p.IsEmpty() {
		return nil
	}
	switch p.Kind {
	case Pawn:
		var ep *Coord
		if v.EnPassant {
			ep = pos.EnPassant
		}
		return pawnMoves(b, from, p.Color, ep)
	case Knight:
		return stepMoves(b, from, p.Color, knightOffsets)
	case Bishop:
		return rayMoves(b, from, p.Color, bishopDirs)
	case Rook:
		return rayMoves(b, from, p.Color, rookDirs)
	case Queen:
		return rayMoves(b, from, p.Color, queenDirs)
	case King:
		moves := stepMoves(b, from, p.Color, kingOffsets)
		for _, right := range castleOptions(pos, from, p.Color) {
			moves = append(moves, right.kingTo)
		}
		return moves
	}
	return nil
}

func pawnMoves(b Board, from Coord, color Color, ep *Coord) []Coord {
	var moves []Coord
	dir := forward(color)
	one := from.Add(dir, 0)
	if b.InBounds(one) && b.At(one).IsEmpty() {
		moves = append(moves, one)
		two := from.Add(2*dir, 0)
		if from.Row == pawnStartRank(b, color) && b.InBounds(two) && b.At(two).IsEmpty() {
			moves = append(moves, two)
		}
	}
	for _, dc := range []int{-1, 1} {
		target := from.Add(dir, dc)
		if !b.InBounds(target) {
			continue
		}
		t := b.At(target)
		if !t.IsEmpty() && t.Color != color {
			moves = append(moves, target)
		} else if ep != nil && target == *ep && t.IsEmpty() {
			moves = append(moves, target)
		}
	}
	return moves
}

func stepMoves(b Board, from Coord, color Color, offsets []Coord) []Coord {
	var moves []Coord
	for _, off := range offsets {
		to := from.Add(off.Row, off.Col)
		if !b.InBounds(to) {
			continue
		}
		if t := b.At(to); t.IsEmpty() || t.Color != color {
			moves = append(moves, to)
		}
	}
	return moves
}

func rayMoves(b Board, from Coord, color Color, dirs []Coord) []Coord {
	var moves []Coord
	for _, dir := range dirs {
		to := from.Add(dir.Row, dir.Col)
		for b.InBounds(to) {
			t := b.At(to)
			if t.IsEmpty() {
				moves = append(moves, to)
			} else {
				if t.Color != color {
					moves = append(moves, to)
				}
				break
			}
			to = to.Add(dir.Row, dir.Col)
		}
	}
	return moves
}

type castleOption struct {
	right  CastleRight
	kingTo Coord
	rookTo Coord
	rook   Coord
}

// castleOptions returns the castles available to the king on from: the king
// and rook stand on their home squares, every square between them is empty,
// and the destination squares are free.
func castleOptions(pos Position, from Coord, color Color) []castleOption {
	b := pos.Board
	row := backRank(b, color)
	if from.Row != row {
		return nil
	}
	var out []castleOption
	for _, right := range pos.Castling.For(color) {
		if right.KingCol != from.Col {
			continue
		}
		rook := Coord{Row: row, Col: right.RookCol}
		if !b.InBounds(rook) || !b.At(rook).Is(Rook, color) {
			continue
		}
		dir := 1
		if right.RookCol < right.KingCol {
			dir = -1
		}
		clear := true
		for c := right.KingCol + dir; c != right.RookCol; c += dir {
			if !b.Squares[row][c].IsEmpty() {
				clear = false
				break
			}
		}
		if !clear {
			continue
		}
		kingTo := Coord{Row: row, Col: right.KingCol + 2*dir}
		rookTo := Coord{Row: row, Col: kingTo.Col - dir}
		if !b.InBounds(kingTo) || !castleSquareFree(b, kingTo, from, rook) || !castleSquareFree(b, rookTo, from, rook) {
			continue
		}
		out = append(out, castleOption{right: right, kingTo: kingTo, rookTo: rookTo, rook: rook})
	}
	return out
}

func castleSquareFree(b Board, sq, king, rook Coord) bool {
	return sq == king || sq == rook || b.At(sq).IsEmpty()
}

// attackTargets lists the squares a piece attacks. Pawns attack diagonally
// whether or not the square is occupied; en passant and castling never
// attack.
func attackTargets(b Board, from Coord) []Coord {
	p := b.At(from)
	switch p.Kind {
	case Pawn:
		var out []Coord
		for _, dc := range []int{-1, 1} {
			if t := from.Add(forward(p.Color), dc); b.InBounds(t) {
				out = append(out, t)
			}
		}
		return out
	case Knight:
		return stepMoves(b, from, p.Color, knightOffsets)
	case Bishop:
		return rayMoves(b, from, p.Color, bishopDirs)
	case Rook:
		return rayMoves(b, from, p.Color, rookDirs)
	case Queen:
		return rayMoves(b, from, p.Color, queenDirs)
	case King:
		return stepMoves(b, from, p.Color, kingOffsets)
	}
	return nil
}

// Attacked reports whether any piece of color by attacks sq.
func Attacked(b Board, sq Coord, by Color) bool {
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			p := b.Squares[r][c]
			if p.IsEmpty() || p.Color != by {
				continue
			}
			for _, t := range attackTargets(b, Coord{Row: r, Col: c}) {
				if t == sq {
					return true
				}
			}
		}
	}
	return false
}

// InCheck reports whether color's king is attacked. A side without a king is
// never in check.
func InCheck(b Board, color Color) bool {
	king, ok := b.Find(Piece{Kind: King, Color: color})
	if !ok {
		return false
	}
	return Attacked(b, king, color.Opponent())
}
