package game

import "errors"

// Validation errors. The table is unchanged when one of these is returned.
var (
	ErrIllegalCheck     = errors.New("cannot check when there is a bet to call")
	ErrIllegalRaise     = errors.New("illegal raise")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrCannotAct        = errors.New("player cannot act")
	ErrInvalidAction    = errors.New("invalid action")
	ErrNoHandInProgress = errors.New("no hand in progress")
)

// Structural errors.
var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotEnoughPlayers = errors.New("not enough players to start a hand")
	ErrTableFull        = errors.New("table is full")
	ErrSeatTaken        = errors.New("seat is taken")
	ErrInvalidSeat      = errors.New("invalid seat")
	ErrHandInProgress   = errors.New("hand in progress")
	ErrDuplicatePlayer  = errors.New("player already seated")
)
