package engine

// classicPolicy: draws by material, repetition and the fifty-move rule, then
// checkmate or stalemate. Board bounds come from the board itself, so the
// same policy serves the enlarged and reduced boards.
type classicPolicy struct{}

func (classicPolicy) Evaluate(pos Position, history History, v *Variant) Status {
	b := pos.Board
	if InsufficientMaterial(b) {
		return Draw(ReasonInsufficientMaterial)
	}
	if history.Repetitions(pos) >= 3 {
		return Draw(ReasonThreefoldRepetition)
	}
	if pos.HalfmoveClock >= FiftyMoveLimit {
		return Draw(ReasonFiftyMoveRule)
	}
	for _, color := range []Color{White, Black} {
		if b.Count(color, King) == 0 {
			return Win(color.Opponent(), ReasonKingCaptured)
		}
	}
	return mateOrStalemate(pos, v)
}

func mateOrStalemate(pos Position, v *Variant) Status {
	if HasLegalMove(pos, v) {
		return Playing()
	}
	if InCheck(pos.Board, pos.ToMove) {
		return Win(pos.ToMove.Opponent(), ReasonCheckmate)
	}
	return Draw(ReasonStalemate)
}

// pawnRacePolicy: first pawn to the far rank wins, so does wiping out the
// other side's pawns. A side that cannot move loses.
type pawnRacePolicy struct{}

func (pawnRacePolicy) Evaluate(pos Position, _ History, v *Variant) Status {
	b := pos.Board
	for _, color := range []Color{pos.ToMove.Opponent(), pos.ToMove} {
		if onFarRank(b, color, Pawn) {
			return Win(color, ReasonPawnReachedLastRank)
		}
		if b.Count(color.Opponent(), Pawn) == 0 {
			return Win(color, ReasonAllPawnsCaptured)
		}
	}
	if !HasLegalMove(pos, v) {
		return Win(pos.ToMove.Opponent(), ReasonNoMove)
	}
	return Playing()
}

func onFarRank(b Board, color Color, kind Kind) bool {
	row := farRank(b, color)
	for c := 0; c < b.Cols; c++ {
		p := b.Squares[row][c]
		if p.Color == color && !p.IsEmpty() && (kind == NoKind || p.Kind == kind) {
			return true
		}
	}
	return false
}

// pieceVsPawnsPolicy: one side holds a lone piece (or a small group of
// pieces) against a file of pawns. Promoted pawns still count as pawn-side
// material.
type pieceVsPawnsPolicy struct {
	PieceColor  Color
	LostReason  Reason
	SafeLanding bool
}

func (p pieceVsPawnsPolicy) Evaluate(pos Position, _ History, v *Variant) Status {
	b := pos.Board
	pawnColor := p.PieceColor.Opponent()
	if b.Count(p.PieceColor, NoKind) == 0 {
		return Win(pawnColor, p.LostReason)
	}
	if b.Count(pawnColor, NoKind) == 0 {
		return Win(p.PieceColor, ReasonAllPawnsCaptured)
	}
	row := farRank(b, pawnColor)
	for c := 0; c < b.Cols; c++ {
		sq := Coord{Row: row, Col: c}
		if u := b.At(sq); u.IsEmpty() || u.Color != pawnColor {
			continue
		}
		if !p.SafeLanding {
			return Win(pawnColor, ReasonPawnPromoted)
		}
		if !Attacked(b, sq, p.PieceColor) {
			return Win(pawnColor, ReasonSafePawnPromoted)
		}
	}
	if !HasLegalMove(pos, v) {
		return Win(pos.ToMove.Opponent(), ReasonNoMove)
	}
	return Playing()
}

// duelPolicy: each side has a single piece; losing it loses the game.
type duelPolicy struct {
	WhiteLost Reason
	BlackLost Reason
}

func (d duelPolicy) Evaluate(pos Position, _ History, v *Variant) Status {
	b := pos.Board
	if b.Count(White, NoKind) == 0 {
		return Win(Black, d.WhiteLost)
	}
	if b.Count(Black, NoKind) == 0 {
		return Win(White, d.BlackLost)
	}
	if !HasLegalMove(pos, v) {
		return Win(pos.ToMove.Opponent(), ReasonNoMove)
	}
	return Playing()
}

// kingHuntPolicy: a full army hunts a lone king. Only the lone king's escape
// squares matter, and only when the hunted side is on move.
type kingHuntPolicy struct {
	Hunted Color
}

func (k kingHuntPolicy) Evaluate(pos Position, _ History, v *Variant) Status {
	b := pos.Board
	hunter := k.Hunted.Opponent()
	king, ok := b.Find(Piece{Kind: King, Color: k.Hunted})
	if !ok {
		return Win(hunter, ReasonCheckmate)
	}
	if pos.ToMove != k.Hunted {
		if !HasLegalMove(pos, v) {
			return Draw(ReasonStalemate)
		}
		return Playing()
	}
	if kingCanEscape(b, king, k.Hunted) {
		return Playing()
	}
	if Attacked(b, king, hunter) {
		return Win(hunter, ReasonCheckmate)
	}
	return Draw(ReasonStalemate)
}

// kingCanEscape tries every neighbouring square: empty or enemy-occupied,
// and not attacked once the king stands there.
func kingCanEscape(b Board, king Coord, color Color) bool {
	for _, off := range kingOffsets {
		to := king.Add(off.Row, off.Col)
		if !b.InBounds(to) {
			continue
		}
		if t := b.At(to); !t.IsEmpty() && t.Color == color {
			continue
		}
		if !Attacked(b.withPieceMoved(king, to), to, color.Opponent()) {
			return true
		}
	}
	return false
}
