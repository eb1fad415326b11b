package board

import "errors"

var (
	ErrInvalidSquare   = errors.New("invalid square")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidFEN      = errors.New("invalid FEN")
)
