package engine

import "fmt"

// Game is the authoritative state of one game: a variant, the current
// position, the history of positions and the last computed status. It is not
// safe for concurrent use; callers serialise access.
type Game struct {
	variant  *Variant
	position Position
	history  History
	status   Status
}

// Outcome describes the effect of one accepted ply.
type Outcome struct {
	Move          Move     `json:"move"`
	Captured      bool     `json:"captured"`
	Position      Position `json:"position"`
	Status        Status   `json:"status"`
	StatusChanged bool     `json:"statusChanged"`
	Repetitions   int      `json:"repetitions"`
}

// Snapshot is the serialisable form of a Game.
type Snapshot struct {
	Variant  string   `json:"variant"`
	Position Position `json:"position"`
	History  History  `json:"history"`
	Status   Status   `json:"status"`
}

func NewGame(variantID string) (*Game, error) {
	v, err := Lookup(variantID)
	if err != nil {
		return nil, err
	}
	pos := v.InitialPosition()
	g := &Game{
		variant:  v,
		position: pos,
		history:  History{}.Append(pos),
	}
	g.status = Evaluate(pos, g.history, v)
	return g, nil
}

// NewGameFromLayout starts a game of the given variant from a custom
// placement. Castling rights are derived from the layout's back ranks.
func NewGameFromLayout(variantID, layout string, toMove Color) (*Game, error) {
	v, err := Lookup(variantID)
	if err != nil {
		return nil, err
	}
	b, err := ParseLayout(layout)
	if err != nil {
		return nil, err
	}
	if b.Rows != v.Rows || b.Cols != v.Cols {
		return nil, fmt.Errorf("%w: layout is %dx%d, %s needs %s", ErrOutOfBounds, b.Cols, b.Rows, v.ID, v.Size())
	}
	pos := Position{Board: b, ToMove: toMove, Castling: initialCastlingRights(b)}
	g := &Game{variant: v, position: pos, history: History{}.Append(pos)}
	g.status = Evaluate(pos, g.history, v)
	return g, nil
}

func Restore(s Snapshot) (*Game, error) {
	v, err := Lookup(s.Variant)
	if err != nil {
		return nil, err
	}
	g := &Game{
		variant:  v,
		position: s.Position.Clone(),
		history:  append(History(nil), s.History...),
		status:   s.Status,
	}
	if len(g.history) == 0 {
		g.history = g.history.Append(g.position)
	}
	if g.status.State == "" {
		g.status = Evaluate(g.position, g.history, v)
	}
	return g, nil
}

func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Variant:  g.variant.ID,
		Position: g.position.Clone(),
		History:  append(History(nil), g.history...),
		Status:   g.status,
	}
}

func (g *Game) Variant() *Variant { return g.variant }
func (g *Game) Position() Position { return g.position.Clone() }
func (g *Game) Status() Status { return g.status }
func (g *Game) ToMove() Color { return g.position.ToMove }
func (g *Game) HistoryLen() int { return len(g.history) }
func (g *Game) Board() Board { return g.position.Board.Clone() }

// Legal lists legal destinations for the piece on from. Pieces of the side
// not on move have none.
func (g *Game) Legal(from Coord) ([]Coord, error) {
	if !g.position.Board.InBounds(from) {
		return nil, &MoveError{Err: ErrOutOfBounds, Move: Move{From: from, To: from}}
	}
	p := g.position.Board.At(from)
	if p.IsEmpty() || p.Color != g.position.ToMove || g.status.Finished() {
		return []Coord{}, nil
	}
	return LegalMoves(g.position, from, g.variant), nil
}

// Moves lists every legal move of the side on move; none once the game is
// over.
func (g *Game) Moves() []Move {
	if g.status.Finished() {
		return []Move{}
	}
	moves := AllLegalMoves(g.position, g.variant)
	if moves == nil {
		return []Move{}
	}
	return moves
}

// Propose validates m against the current position and, when legal, makes
// it the new position. A rejected move leaves the game untouched.
func (g *Game) Propose(m Move) (Outcome, error) {
	if err := g.validate(m); err != nil {
		return Outcome{}, &MoveError{Err: err, Move: m, Rows: g.position.Board.Rows}
	}

	pos := g.position
	v := g.variant
	mover := pos.Board.At(m.From)
	captured := isCapture(pos, m, v)

	next := Position{
		Board:         ApplyMove(pos, m, v),
		ToMove:        pos.ToMove.Opponent(),
		Castling:      nextCastling(pos, m, mover),
		HalfmoveClock: pos.HalfmoveClock + 1,
	}
	if mover.Kind == Pawn || captured {
		next.HalfmoveClock = 0
	}
	if mover.Kind == Pawn && v.EnPassant && abs(m.To.Row-m.From.Row) == 2 {
		next.EnPassant = &Coord{Row: (m.From.Row + m.To.Row) / 2, Col: m.From.Col}
	}

	out := g.advance(next)
	out.Move = m
	out.Captured = captured
	return out, nil
}

// ApplyRemote accepts a position produced elsewhere without re-deriving it
// and only recomputes the status. Castling rights are narrowed to pairs whose
// king and rook still stand on their home squares.
func (g *Game) ApplyRemote(b Board, toMove Color, ep *Coord, halfmoveClock int) (Outcome, error) {
	if b.Rows != g.variant.Rows || b.Cols != g.variant.Cols {
		return Outcome{}, &MoveError{Err: ErrOutOfBounds, Rows: g.variant.Rows}
	}
	next := Position{
		Board:         b.Clone(),
		ToMove:        toMove,
		HalfmoveClock: halfmoveClock,
	}
	if ep != nil {
		if !b.InBounds(*ep) {
			return Outcome{}, &MoveError{Err: ErrOutOfBounds, Move: Move{From: *ep, To: *ep}, Rows: b.Rows}
		}
		target := *ep
		next.EnPassant = &target
	}
	next.Castling = g.position.Castling.without(func(r CastleRight) bool {
		row := backRank(b, r.Color)
		return b.Squares[row][r.KingCol].Is(King, r.Color) && b.Squares[row][r.RookCol].Is(Rook, r.Color)
	})
	return g.advance(next), nil
}

func (g *Game) advance(next Position) Outcome {
	prev := g.status
	g.position = next
	g.history = g.history.Append(next)
	g.status = Evaluate(next, g.history, g.variant)
	return Outcome{
		Position:      next.Clone(),
		Status:        g.status,
		StatusChanged: g.status != prev,
		Repetitions:   g.history.Repetitions(next),
	}
}

func (g *Game) validate(m Move) error {
	if g.status.Finished() {
		return ErrGameOver
	}
	b := g.position.Board
	if !b.InBounds(m.From) || !b.InBounds(m.To) {
		return ErrOutOfBounds
	}
	p := b.At(m.From)
	if p.IsEmpty() {
		return ErrEmptySquare
	}
	if p.Color != g.position.ToMove {
		return ErrNotYourPiece
	}
	if m.Promotion != NoKind && !validPromotion(m.Promotion) {
		return ErrInvalidPromotion
	}
	if !IsLegal(g.position, m, g.variant) {
		return ErrIllegalMove
	}
	return nil
}

// nextCastling drops rights lost by m: any king move, a rook leaving its home
// square, or a rook captured on its home square.
func nextCastling(pos Position, m Move, mover Piece) CastlingRights {
	b := pos.Board
	return pos.Castling.without(func(r CastleRight) bool {
		if mover.Kind == King && r.Color == mover.Color {
			return false
		}
		home := Coord{Row: backRank(b, r.Color), Col: r.RookCol}
		return m.From != home && m.To != home
	})
}
