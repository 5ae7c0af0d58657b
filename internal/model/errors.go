package model

import "errors"

var (
	ErrRoomFull           = errors.New("room is full")
	ErrNotInRoom          = errors.New("player is not in this room")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrAlreadyMoved       = errors.New("already moved this turn")
	ErrWaitingForOpponent = errors.New("waiting for an opponent")
	ErrAlreadyQueued      = errors.New("player already in queue")
	ErrNotAuthorized      = errors.New("not authorized to join this room")
)
