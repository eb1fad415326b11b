package game

import (
	"fmt"

	"chessarbiter/internal/board"
	"chessarbiter/internal/core"

	"github.com/notnil/chess"
)

// PGN renders the game so far with standard tags. Moves are replayed through
// notnil/chess to obtain SAN.
func (g *Game) PGN() (string, error) {
	opt, err := chess.FEN(g.InitialFEN())
	if err != nil {
		return "", fmt.Errorf("pgn: initial position: %w", err)
	}
	pg := chess.NewGame(opt)

	pg.AddTagPair("Event", "Casual game")
	pg.AddTagPair("Date", g.updatedAt.Format("2006.01.02"))
	if w := g.players[core.ColorWhite]; w != nil {
		pg.AddTagPair("White", w.Name)
	}
	if b := g.players[core.ColorBlack]; b != nil {
		pg.AddTagPair("Black", b.Name)
	}
	if g.InitialFEN() != board.StartingFEN {
		pg.AddTagPair("SetUp", "1")
		pg.AddTagPair("FEN", g.InitialFEN())
	}

	notation := chess.UCINotation{}
	for _, uci := range g.Moves() {
		m, err := notation.Decode(pg.Position(), uci)
		if err != nil {
			return "", fmt.Errorf("pgn: decode %s: %w", uci, err)
		}
		if err := pg.Move(m); err != nil {
			return "", fmt.Errorf("pgn: move %s: %w", uci, err)
		}
	}

	return pg.String(), nil
}
