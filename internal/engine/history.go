package engine

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// PositionKey hashes the placement, the side to move and the en passant
// target. Castling rights and clocks are not part of the key.
func PositionKey(b Board, toMove Color, ep *Coord) uint64 {
	var sb strings.Builder
	sb.WriteString(b.Layout())
	sb.WriteByte('_')
	if toMove == White {
		sb.WriteByte('W')
	} else {
		sb.WriteByte('B')
	}
	sb.WriteByte('_')
	if ep == nil {
		sb.WriteByte('-')
	} else {
		sb.WriteString(strconv.Itoa(ep.Row))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(ep.Col))
	}
	return xxhash.Sum64String(sb.String())
}

type HistoryEntry struct {
	Board     Board  `json:"board"`
	ToMove    Color  `json:"toMove"`
	EnPassant *Coord `json:"enPassantTarget"`
	Key       uint64 `json:"key"`
}

func NewHistoryEntry(pos Position) HistoryEntry {
	entry := HistoryEntry{
		Board:  pos.Board.Clone(),
		ToMove: pos.ToMove,
		Key:    PositionKey(pos.Board, pos.ToMove, pos.EnPassant),
	}
	if pos.EnPassant != nil {
		ep := *pos.EnPassant
		entry.EnPassant = &ep
	}
	return entry
}

// History is the append-only list of positions reached, one entry per ply
// plus the starting position.
type History []HistoryEntry

func (h History) Append(pos Position) History {
	return append(h, NewHistoryEntry(pos))
}

// Occurrences counts entries whose key matches.
func (h History) Occurrences(key uint64) int {
	n := 0
	for _, e := range h {
		if e.Key == key {
			n++
		}
	}
	return n
}

// Repetitions counts how often pos has occurred, pos itself included when it
// is already the last entry.
func (h History) Repetitions(pos Position) int {
	return h.Occurrences(PositionKey(pos.Board, pos.ToMove, pos.EnPassant))
}
