package engine

// Move is a from/to pair with an optional promotion kind. Capture, castle and
// en passant are derived from the board when the move is applied.
type Move struct {
	From      Coord `json:"from"`
	To        Coord `json:"to"`
	Promotion Kind  `json:"promotion,omitempty"`
}

// CastleRight records a king/rook pair that may still castle. Home squares
// sit on the color's back rank.
type CastleRight struct {
	Color   Color `json:"color"`
	KingCol int   `json:"kingCol"`
	RookCol int   `json:"rookCol"`
}

type CastlingRights []CastleRight

func (cr CastlingRights) For(color Color) []CastleRight {
	var out []CastleRight
	for _, r := range cr {
		if r.Color == color {
			out = append(out, r)
		}
	}
	return out
}

func (cr CastlingRights) without(keep func(CastleRight) bool) CastlingRights {
	out := make(CastlingRights, 0, len(cr))
	for _, r := range cr {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// initialCastlingRights pairs each back-rank king with the rooks standing on
// the same rank in the starting layout.
func initialCastlingRights(b Board) CastlingRights {
	var rights CastlingRights
	for _, color := range []Color{White, Black} {
		row := backRank(b, color)
		kingCol := -1
		for c := 0; c < b.Cols; c++ {
			if b.Squares[row][c].Is(King, color) {
				kingCol = c
			}
		}
		if kingCol < 0 {
			continue
		}
		for c := 0; c < b.Cols; c++ {
			if c != kingCol && b.Squares[row][c].Is(Rook, color) && abs(c-kingCol) >= 3 {
				rights = append(rights, CastleRight{Color: color, KingCol: kingCol, RookCol: c})
			}
		}
	}
	return rights
}

// Position is everything the rules need besides history.
type Position struct {
	Board         Board          `json:"board"`
	ToMove        Color          `json:"toMove"`
	EnPassant     *Coord         `json:"enPassantTarget"`
	Castling      CastlingRights `json:"castling"`
	HalfmoveClock int            `json:"halfmoveClock"`
}

func (p Position) Clone() Position {
	np := p
	np.Board = p.Board.Clone()
	if p.EnPassant != nil {
		ep := *p.EnPassant
		np.EnPassant = &ep
	}
	np.Castling = append(CastlingRights(nil), p.Castling...)
	return np
}

// backRank is the row a color's pieces start on.
func backRank(b Board, color Color) int {
	if color == White {
		return b.Rows - 1
	}
	return 0
}

// farRank is the row a color's pawns promote on.
func farRank(b Board, color Color) int {
	return backRank(b, color.Opponent())
}

func forward(color Color) int {
	if color == White {
		return -1
	}
	return 1
}

func pawnStartRank(b Board, color Color) int {
	return backRank(b, color) + forward(color)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
