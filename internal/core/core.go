package core

import "strings"

// State is the externally visible lifecycle of a game
type State int

const (
	StateOngoing State = iota
	StatePromotion     // Pawn reached the last rank, waiting for a piece choice
	StateWhiteWins
	StateBlackWins
)

func (s State) String() string {
	switch s {
	case StatePromotion:
		return "promotion"
	case StateWhiteWins:
		return "white wins"
	case StateBlackWins:
		return "black wins"
	default:
		return "ongoing"
	}
}

// IsOver reports whether play has halted until reset
func (s State) IsOver() bool {
	return s == StateWhiteWins || s == StateBlackWins
}

type Color byte

const (
	ColorWhite Color = iota + 1
	ColorBlack
)

func (c Color) String() string {
	if c == ColorWhite {
		return "w"
	} else if c == ColorBlack {
		return "b"
	} else {
		return "-"
	}
}

// Name returns the display label of the color
func (c Color) Name() string {
	switch c {
	case ColorWhite:
		return "White"
	case ColorBlack:
		return "Black"
	default:
		return "None"
	}
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// ParseColor accepts "w", "b", "white" or "black" in any case
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "white":
		return ColorWhite, true
	case "b", "black":
		return ColorBlack, true
	}
	return 0, false
}

// WinnerState returns the terminal state in which the given color has won
func WinnerState(c Color) State {
	if c == ColorWhite {
		return StateWhiteWins
	}
	return StateBlackWins
}
