package engine

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds      = errors.New("square outside the board")
	ErrEmptySquare      = errors.New("no piece at from square")
	ErrNotYourPiece     = errors.New("piece belongs to the other side")
	ErrIllegalMove      = errors.New("illegal move")
	ErrInvalidPromotion = errors.New("invalid promotion piece")
	ErrGameOver         = errors.New("game is already finished")
	ErrUnknownVariant   = errors.New("unknown variant")
)

// MoveError wraps a rejected move with the squares involved.
type MoveError struct {
	Err  error
	Move Move
	Rows int
}

func (e *MoveError) Error() string {
	if e.Rows > 0 {
		return fmt.Sprintf("%s -> %s: %v", e.Move.From.Label(e.Rows), e.Move.To.Label(e.Rows), e.Err)
	}
	return fmt.Sprintf("%+v -> %+v: %v", e.Move.From, e.Move.To, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}
