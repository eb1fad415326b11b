package engine

import (
	"fmt"
	"strings"

	"chessarbiter/internal/board"
)

// Move is a from/to pair in UCI form with an optional promotion piece
type Move struct {
	From      board.Square
	To        board.Square
	Promotion board.Kind
}

// ParseMove reads UCI notation: "e2e4", or "e7e8q" with a promotion letter
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: %q is not a UCI move", ErrIllegalMove, s)
	}
	from, err := board.ParseSquare(s[0:2])
	if err != nil {
		return Move{}, err
	}
	to, err := board.ParseSquare(s[2:4])
	if err != nil {
		return Move{}, err
	}

	m := Move{From: from, To: to}
	if len(s) == 5 {
		kind, ok := board.ParseKind(s[4:])
		if !ok || !kind.Promotable() {
			return Move{}, fmt.Errorf("%w: %q", ErrInvalidPromotionChoice, s[4:])
		}
		m.Promotion = kind
	}
	return m, nil
}

func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != 0 {
		s += strings.ToLower(string(m.Promotion.Letter()))
	}
	return s
}
