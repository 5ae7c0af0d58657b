package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	color, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = color
	return nil
}

func ParseColor(s string) (Color, error) {
	switch strings.ToLower(s) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return White, fmt.Errorf("unknown color %q", s)
}

// Kind is a piece type. The zero value means "no piece".
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindNames = map[Kind]string{
	Pawn:   "pawn",
	Knight: "knight",
	Bishop: "bishop",
	Rook:   "rook",
	Queen:  "queen",
	King:   "king",
}

var kindLetters = map[Kind]byte{
	Pawn:   'p',
	Knight: 'n',
	Bishop: 'b',
	Rook:   'r',
	Queen:  'q',
	King:   'k',
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return ""
}

func (k Kind) MarshalJSON() ([]byte, error) {
	if k == NoKind {
		return []byte("null"), nil
	}
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*k = NoKind
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	kind, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseKind accepts either a full name ("queen") or a letter ("q").
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return NoKind, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	if len(s) == 1 {
		for k, letter := range kindLetters {
			if letter == s[0] {
				return k, nil
			}
		}
	}
	return NoKind, fmt.Errorf("unknown piece kind %q", s)
}

// Piece is a kind+color pair. The zero Piece is an empty square.
type Piece struct {
	Kind  Kind
	Color Color
}

func NewPiece(kind Kind, color Color) Piece {
	return Piece{Kind: kind, Color: color}
}

func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

func (p Piece) Is(kind Kind, color Color) bool {
	return p.Kind == kind && p.Color == color
}

// Letter returns the piece letter, uppercase for white, or '.' for empty.
func (p Piece) Letter() byte {
	if p.IsEmpty() {
		return '.'
	}
	letter := kindLetters[p.Kind]
	if p.Color == White {
		letter -= 'a' - 'A'
	}
	return letter
}

func (p Piece) String() string {
	return string(p.Letter())
}

func PieceFromLetter(letter byte) (Piece, error) {
	color := Black
	lower := letter
	if letter >= 'A' && letter <= 'Z' {
		color = White
		lower = letter + ('a' - 'A')
	}
	for k, l := range kindLetters {
		if l == lower {
			return Piece{Kind: k, Color: color}, nil
		}
	}
	return Piece{}, fmt.Errorf("unknown piece letter %q", letter)
}

func (p Piece) MarshalJSON() ([]byte, error) {
	if p.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(p.String())
}

func (p *Piece) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Piece{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if len(s) != 1 {
		return fmt.Errorf("invalid piece %q", s)
	}
	piece, err := PieceFromLetter(s[0])
	if err != nil {
		return err
	}
	*p = piece
	return nil
}
