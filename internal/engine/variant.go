package engine

import (
	"fmt"
	"strings"
)

type PromotionRule uint8

const (
	// PromoteNone leaves pawns as pawns on the far rank.
	PromoteNone PromotionRule = iota
	// PromoteAuto always promotes to a queen.
	PromoteAuto
	// PromoteManual honours the requested kind, falling back to a queen.
	PromoteManual
)

// Variant describes one rule set. Adding a variant means adding a descriptor
// to the table below; no rule function switches on variant ids.
type Variant struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Rows       int           `json:"rows"`
	Cols       int           `json:"cols"`
	KingSafety bool          `json:"kingSafety"`
	EnPassant  bool          `json:"enPassant"`
	Promotion  PromotionRule `json:"-"`
	Layout     string        `json:"-"`
	Policy     StatusPolicy  `json:"-"`
	Aliases    []string      `json:"-"`
}

// Size renders the board size the way room records carry it, cols x rows.
func (v *Variant) Size() string {
	return fmt.Sprintf("%dx%d", v.Cols, v.Rows)
}

func (v *Variant) InitialBoard() Board {
	return MustParseLayout(v.Layout)
}

func (v *Variant) InitialPosition() Position {
	b := v.InitialBoard()
	return Position{
		Board:    b,
		ToMove:   White,
		Castling: initialCastlingRights(b),
	}
}

func (v *Variant) promotionKind(requested Kind) Kind {
	switch v.Promotion {
	case PromoteNone:
		return Pawn
	case PromoteManual:
		if validPromotion(requested) {
			return requested
		}
	}
	return Queen
}

func validPromotion(k Kind) bool {
	return k == Knight || k == Bishop || k == Rook || k == Queen
}

var variants = []*Variant{
	{
		ID: "classic", Name: "Default Chess", Rows: 8, Cols: 8,
		KingSafety: true, EnPassant: true, Promotion: PromoteManual,
		Layout:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",
		Policy:  classicPolicy{},
		Aliases: []string{"alap"},
	},
	{
		ID: "pawn-war", Name: "Classic Pawn War", Rows: 8, Cols: 8,
		Promotion: PromoteNone,
		Layout:    "8/pppppppp/8/8/8/8/PPPPPPPP/8",
		Policy:    pawnRacePolicy{},
		Aliases:   []string{"paraszthaboru"},
	},
	{
		ID: "queen-vs-pawns", Name: "Queen vs 8 Pawns", Rows: 8, Cols: 8,
		EnPassant: true, Promotion: PromoteAuto,
		Layout:  "8/pppppppp/8/8/8/8/8/3Q4",
		Policy:  pieceVsPawnsPolicy{PieceColor: White, LostReason: ReasonQueenCaptured},
		Aliases: []string{"vezerharc"},
	},
	{
		ID: "rook-vs-pawns", Name: "Rook vs 5 Pawns", Rows: 8, Cols: 8,
		EnPassant: true, Promotion: PromoteAuto,
		Layout:  "8/ppppp3/8/8/8/8/8/7R",
		Policy:  pieceVsPawnsPolicy{PieceColor: White, LostReason: ReasonRookCaptured, SafeLanding: true},
		Aliases: []string{"bastyaharc"},
	},
	{
		ID: "bishop-vs-pawns", Name: "Bishop vs 3 Pawns", Rows: 8, Cols: 8,
		EnPassant: true, Promotion: PromoteAuto,
		Layout:  "8/ppp5/8/8/8/8/8/5B2",
		Policy:  pieceVsPawnsPolicy{PieceColor: White, LostReason: ReasonBishopCaptured, SafeLanding: true},
		Aliases: []string{"futoharc"},
	},
	{
		ID: "knights-vs-pawns", Name: "2 Knights vs 3 Pawns", Rows: 8, Cols: 8,
		EnPassant: true, Promotion: PromoteAuto,
		Layout:  "8/8/3n4/2n5/8/8/2PPP3/8",
		Policy:  pieceVsPawnsPolicy{PieceColor: Black, LostReason: ReasonKnightsCaptured, SafeLanding: true},
		Aliases: []string{"huszarok_vs_gyalogok"},
	},
	{
		ID: "queen-vs-knight", Name: "Queen vs Knight", Rows: 8, Cols: 8,
		Promotion: PromoteAuto,
		Layout:    "3q4/8/8/8/8/8/8/6N1",
		Policy:    duelPolicy{WhiteLost: ReasonKnightCaptured, BlackLost: ReasonQueenCaptured},
		Aliases:   []string{"queen_vs_knight"},
	},
	{
		ID: "king-hunt", Name: "King Hunt", Rows: 8, Cols: 8,
		KingSafety: true, EnPassant: true, Promotion: PromoteAuto,
		Layout:  "4k3/8/8/8/8/8/PPPPPPPP/RNBQKBNR",
		Policy:  kingHuntPolicy{Hunted: Black},
		Aliases: []string{"kiralyvadaszat"},
	},
	{
		ID: "active-chess", Name: "Active Chess", Rows: 8, Cols: 9,
		KingSafety: true, EnPassant: true, Promotion: PromoteManual,
		Layout:  "rnbqkqbnr/ppppppppp/9/9/9/9/PPPPPPPPP/RNBQKQBNR",
		Policy:  classicPolicy{},
		Aliases: []string{"active_chess"},
	},
	{
		ID: "faraway-chess", Name: "Faraway Chess", Rows: 9, Cols: 8,
		KingSafety: true, EnPassant: true, Promotion: PromoteManual,
		Layout:  "rnbqkbnr/pppppppp/8/8/8/8/8/PPPPPPPP/RNBQKBNR",
		Policy:  classicPolicy{},
		Aliases: []string{"faraway_chess"},
	},
	{
		ID: "micro-chess", Name: "Micro Chess", Rows: 5, Cols: 4,
		KingSafety: true, EnPassant: true, Promotion: PromoteManual,
		Layout:  "knbr/p3/4/3P/RBNK",
		Policy:  classicPolicy{},
		Aliases: []string{"micro_chess"},
	},
}

// DefaultVariant is used when a room is created without naming one.
const DefaultVariant = "classic"

// Lookup finds a variant by id or alias, case-insensitively.
func Lookup(id string) (*Variant, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		id = DefaultVariant
	}
	for _, v := range variants {
		if v.ID == id {
			return v, nil
		}
		for _, alias := range v.Aliases {
			if alias == id {
				return v, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, id)
}

// Variants returns the descriptor table in display order.
func Variants() []*Variant {
	return append([]*Variant(nil), variants...)
}
