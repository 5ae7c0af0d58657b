package engine

type State string

const (
	StatePlaying  State = "playing"
	StateFinished State = "finished"
)

type Winner string

const (
	WinnerWhite Winner = "white"
	WinnerBlack Winner = "black"
	WinnerDraw  Winner = "draw"
)

func winnerOf(c Color) Winner {
	if c == White {
		return WinnerWhite
	}
	return WinnerBlack
}

type Reason string

const (
	ReasonCheckmate            Reason = "checkmate"
	ReasonStalemate            Reason = "stalemate"
	ReasonInsufficientMaterial Reason = "insufficient-material"
	ReasonThreefoldRepetition  Reason = "threefold-repetition"
	ReasonFiftyMoveRule        Reason = "fifty-move-rule"
	ReasonNoMove               Reason = "no-move"
	ReasonKingCaptured         Reason = "king-captured"
	ReasonAllPawnsCaptured     Reason = "all-pawns-captured"
	ReasonQueenCaptured        Reason = "queen-captured"
	ReasonRookCaptured         Reason = "rook-captured"
	ReasonBishopCaptured       Reason = "bishop-captured"
	ReasonKnightCaptured       Reason = "knight-captured"
	ReasonKnightsCaptured      Reason = "knights-captured"
	ReasonPawnPromoted         Reason = "pawn-promoted"
	ReasonSafePawnPromoted     Reason = "safe-pawn-promoted"
	ReasonPawnReachedLastRank  Reason = "pawn-reached-last-rank"
)

// FiftyMoveLimit is the half-move clock value that ends the game.
const FiftyMoveLimit = 100

type Status struct {
	State  State  `json:"status"`
	Winner Winner `json:"winner,omitempty"`
	Reason Reason `json:"reason,omitempty"`
}

func Playing() Status {
	return Status{State: StatePlaying}
}

func Win(c Color, reason Reason) Status {
	return Status{State: StateFinished, Winner: winnerOf(c), Reason: reason}
}

func Draw(reason Reason) Status {
	return Status{State: StateFinished, Winner: WinnerDraw, Reason: reason}
}

func (s Status) Finished() bool {
	return s.State == StateFinished
}

// StatusPolicy decides whether a position is terminal. Implementations must
// be pure: the same inputs always give the same status.
type StatusPolicy interface {
	Evaluate(pos Position, history History, v *Variant) Status
}

// Evaluate computes the game status of pos. history must already contain pos
// as its last entry; the half-move clock is taken from pos.
func Evaluate(pos Position, history History, v *Variant) Status {
	if pos.Board.Squares == nil {
		return Playing()
	}
	return v.Policy.Evaluate(pos, history, v)
}

// InsufficientMaterial reports bare kings, king and one minor piece against
// a bare king, and two knights with the kings.
func InsufficientMaterial(b Board) bool {
	var others []Piece
	b.each(func(_ Coord, p Piece) {
		if p.Kind != King {
			others = append(others, p)
		}
	})
	switch len(others) {
	case 0:
		return true
	case 1:
		return others[0].Kind == Knight || others[0].Kind == Bishop
	case 2:
		return others[0].Kind == Knight && others[1].Kind == Knight
	}
	return false
}
