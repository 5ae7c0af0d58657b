package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord addresses a square. Row 0 is Black's back rank.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) Add(dRow, dCol int) Coord {
	return Coord{Row: c.Row + dRow, Col: c.Col + dCol}
}

// Label renders the algebraic square name. Ranks count up from the bottom
// row, so the result depends on the board height.
func (c Coord) Label(rows int) string {
	return fmt.Sprintf("%c%d", 'a'+c.Col, rows-c.Row)
}

func ParseSquare(label string, rows int) (Coord, error) {
	if len(label) < 2 {
		return Coord{}, fmt.Errorf("%w: square %q", ErrOutOfBounds, label)
	}
	file := label[0]
	if file < 'a' || file > 'z' {
		return Coord{}, fmt.Errorf("%w: square %q", ErrOutOfBounds, label)
	}
	rank, err := strconv.Atoi(label[1:])
	if err != nil {
		return Coord{}, fmt.Errorf("%w: square %q", ErrOutOfBounds, label)
	}
	return Coord{Row: rows - rank, Col: int(file - 'a')}, nil
}

type Board struct {
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
	Squares [][]Piece `json:"squares"`
}

func NewBoard(rows, cols int) Board {
	b := Board{Rows: rows, Cols: cols, Squares: make([][]Piece, rows)}
	for i := range b.Squares {
		b.Squares[i] = make([]Piece, cols)
	}
	return b
}

func (b Board) Clone() Board {
	nb := Board{Rows: b.Rows, Cols: b.Cols, Squares: make([][]Piece, len(b.Squares))}
	for i, row := range b.Squares {
		nb.Squares[i] = append([]Piece(nil), row...)
	}
	return nb
}

func (b Board) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < b.Rows && c.Col >= 0 && c.Col < b.Cols
}

func (b Board) mustBeInBounds(c Coord) {
	if !b.InBounds(c) {
		panic(fmt.Sprintf("engine: coordinate %+v outside %dx%d board", c, b.Rows, b.Cols))
	}
}

// At panics on out-of-range coordinates; callers bound-check first.
func (b Board) At(c Coord) Piece {
	b.mustBeInBounds(c)
	return b.Squares[c.Row][c.Col]
}

// Set writes in place. Only used on boards the caller owns.
func (b Board) Set(c Coord, p Piece) {
	b.mustBeInBounds(c)
	b.Squares[c.Row][c.Col] = p
}

// withPieceMoved returns a copy with the piece on from relocated to to.
func (b Board) withPieceMoved(from, to Coord) Board {
	nb := b.Clone()
	nb.Set(to, nb.At(from))
	nb.Set(from, Piece{})
	return nb
}

func (b Board) Find(p Piece) (Coord, bool) {
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			if b.Squares[r][c] == p {
				return Coord{Row: r, Col: c}, true
			}
		}
	}
	return Coord{}, false
}

// Count returns how many squares hold a piece of the given color, optionally
// restricted to a kind (NoKind counts every kind).
func (b Board) Count(color Color, kind Kind) int {
	n := 0
	b.each(func(_ Coord, p Piece) {
		if p.Color == color && (kind == NoKind || p.Kind == kind) {
			n++
		}
	})
	return n
}

func (b Board) each(fn func(Coord, Piece)) {
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			if p := b.Squares[r][c]; !p.IsEmpty() {
				fn(Coord{Row: r, Col: c}, p)
			}
		}
	}
}

// Layout renders the placement as rows of letters joined by '/', with '.' for
// empty squares. It is the canonical form used for position keys.
func (b Board) Layout() string {
	var sb strings.Builder
	for r, row := range b.Squares {
		if r > 0 {
			sb.WriteByte('/')
		}
		for _, p := range row {
			sb.WriteByte(p.Letter())
		}
	}
	return sb.String()
}

// ParseLayout reads a FEN-like placement: rows top to bottom separated by
// '/', piece letters, '.' or digit runs for empty squares.
func ParseLayout(layout string) (Board, error) {
	rows := strings.Split(layout, "/")
	parsed := make([][]Piece, 0, len(rows))
	cols := -1
	for _, row := range rows {
		var squares []Piece
		for i := 0; i < len(row); i++ {
			ch := row[i]
			switch {
			case ch == '.':
				squares = append(squares, Piece{})
			case ch >= '1' && ch <= '9':
				for n := 0; n < int(ch-'0'); n++ {
					squares = append(squares, Piece{})
				}
			default:
				p, err := PieceFromLetter(ch)
				if err != nil {
					return Board{}, fmt.Errorf("parse layout %q: %w", layout, err)
				}
				squares = append(squares, p)
			}
		}
		if cols >= 0 && len(squares) != cols {
			return Board{}, fmt.Errorf("parse layout %q: ragged rows", layout)
		}
		cols = len(squares)
		parsed = append(parsed, squares)
	}
	if cols <= 0 {
		return Board{}, fmt.Errorf("parse layout %q: empty board", layout)
	}
	return Board{Rows: len(parsed), Cols: cols, Squares: parsed}, nil
}

func MustParseLayout(layout string) Board {
	b, err := ParseLayout(layout)
	if err != nil {
		panic(err)
	}
	return b
}
