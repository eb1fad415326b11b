package engine

import "errors"

var (
	ErrIllegalMove            = errors.New("illegal move")
	ErrWrongTurn              = errors.New("not your turn")
	ErrInvalidPromotionChoice = errors.New("invalid promotion choice")
	ErrPromotionPending       = errors.New("promotion choice pending")
	ErrGameOver               = errors.New("game is over")
	ErrNoSelection            = errors.New("no piece selected")
)
