package game

import (
	"errors"
	"fmt"
	"time"

	"chessarbiter/internal/board"
	"chessarbiter/internal/core"
	"chessarbiter/internal/engine"
)

// ErrCannotUndo is returned when fewer moves were played than requested
var ErrCannotUndo = errors.New("cannot undo")

type Snapshot struct {
	FEN           string     `json:"fen"`
	PreviousMove  string     `json:"previousMove"`  // UCI move that produced this position, empty for the initial one
	NextTurnColor core.Color `json:"nextTurnColor"` // Side to move at this position
}

// Game is a hot-seat session: one engine, two named players and the list of
// positions reached so far
type Game struct {
	engine     *engine.Engine
	snapshots  []Snapshot
	players    map[core.Color]*core.Player
	ownerID    string
	lastResult *engine.MoveResult
	updatedAt  time.Time
}

func New(initialFEN string, whitePlayer, blackPlayer *core.Player) (*Game, error) {
	if initialFEN == "" {
		initialFEN = board.StartingFEN
	}
	eng, err := engine.New(engine.FromFEN(initialFEN))
	if err != nil {
		return nil, err
	}
	if whitePlayer == nil {
		whitePlayer = core.NewPlayer("", core.ColorWhite)
	}
	if blackPlayer == nil {
		blackPlayer = core.NewPlayer("", core.ColorBlack)
	}

	return &Game{
		engine: eng,
		snapshots: []Snapshot{
			{
				FEN:           eng.FEN(),
				PreviousMove:  "",
				NextTurnColor: eng.Active(),
			},
		},
		players: map[core.Color]*core.Player{
			core.ColorWhite: whitePlayer,
			core.ColorBlack: blackPlayer,
		},
		updatedAt: time.Now(),
	}, nil
}

func (g *Game) SetOwner(userID string) {
	g.ownerID = userID
}

// OwnerID is the user who created the game, empty for anonymous games
func (g *Game) OwnerID() string {
	return g.ownerID
}

func (g *Game) LastResult() *engine.MoveResult {
	return g.lastResult
}

func (g *Game) UpdatedAt() time.Time {
	return g.updatedAt
}

func (g *Game) CurrentSnapshot() Snapshot {
	return g.snapshots[len(g.snapshots)-1]
}

// CurrentFEN reflects the live position, including a promotion still waiting for a choice
// History returns a copy of every snapshot, the initial position first
func (g *Game) History() []Snapshot {
	out := make([]Snapshot, len(g.snapshots))
	copy(out, g.snapshots)
	return out
}

func (g *Game) CurrentFEN() string {
	return g.engine.FEN()
}

func (g *Game) NextTurnColor() core.Color {
	return g.engine.Active()
}

func (g *Game) NextPlayer() *core.Player {
	return g.players[g.NextTurnColor()]
}

func (g *Game) GetPlayer(color core.Color) *core.Player {
	return g.players[color]
}

func (g *Game) Select(sq board.Square) (engine.Selection, error) {
	g.touch()
	return g.engine.SelectSquare(sq)
}

func (g *Game) Cancel() {
	g.touch()
	g.engine.Cancel()
}

// MoveSelected moves the selected piece to to
func (g *Game) MoveSelected(to board.Square) (engine.MoveResult, error) {
	res, err := g.engine.MoveSelected(to)
	if err != nil {
		return res, err
	}
	g.record(res)
	return res, nil
}

// Move plays a move in UCI form. Without a promotion suffix a pawn reaching the
// last rank leaves the game waiting for Promote.
func (g *Game) Move(m engine.Move) (engine.MoveResult, error) {
	res, err := g.engine.Play(m)
	if err != nil {
		return res, err
	}
	g.record(res)
	return res, nil
}

func (g *Game) Promote(kind board.Kind) (engine.MoveResult, error) {
	res, err := g.engine.ChoosePromotion(kind)
	if err != nil {
		return res, err
	}
	g.record(res)
	return res, nil
}

func (g *Game) record(res engine.MoveResult) {
	g.touch()
	g.lastResult = &res
	if res.Outcome != engine.Applied {
		return
	}
	g.snapshots = append(g.snapshots, Snapshot{
		FEN:           g.engine.FEN(),
		PreviousMove:  res.Move.String(),
		NextTurnColor: g.engine.Active(),
	})
}

// Reset returns to the initial position and drops the history
func (g *Game) Reset() {
	g.touch()
	g.engine.Reset()
	g.snapshots = g.snapshots[:1]
	g.lastResult = nil
}

// UndoMoves takes back count completed moves by replaying the remaining ones from
// the initial position. A pending promotion is discarded with them.
func (g *Game) UndoMoves(count int) error {
	if count < 1 {
		return fmt.Errorf("%w: invalid count %d", ErrCannotUndo, count)
	}

	availableMoves := len(g.snapshots) - 1
	if availableMoves < count {
		return fmt.Errorf("%w %d moves: only %d moves available", ErrCannotUndo, count, availableMoves)
	}

	keep := g.snapshots[:len(g.snapshots)-count]
	g.engine.Reset()
	for _, snap := range keep[1:] {
		m, err := engine.ParseMove(snap.PreviousMove)
		if err != nil {
			return fmt.Errorf("replay %s: %w", snap.PreviousMove, err)
		}
		if _, err := g.engine.Play(m); err != nil {
			return fmt.Errorf("replay %s: %w", snap.PreviousMove, err)
		}
	}

	g.touch()
	g.snapshots = keep
	g.lastResult = nil
	return nil
}

func (g *Game) Moves() []string {
	moves := []string{}
	for i := 1; i < len(g.snapshots); i++ {
		if g.snapshots[i].PreviousMove != "" {
			moves = append(moves, g.snapshots[i].PreviousMove)
		}
	}
	return moves
}

func (g *Game) State() core.State {
	return g.engine.State()
}

func (g *Game) Phase() engine.Phase {
	return g.engine.Phase()
}

func (g *Game) Status() engine.CheckStatus {
	return g.engine.Status()
}

func (g *Game) Selected() (board.Square, bool) {
	return g.engine.Selected()
}

func (g *Game) PendingPromotion() (board.Square, bool) {
	return g.engine.PendingPromotion()
}

func (g *Game) Occupancy() []board.Placement {
	return g.engine.Occupancy()
}

func (g *Game) LegalMoves(sq board.Square) ([]board.Square, error) {
	return g.engine.LegalMoves(sq)
}

func (g *Game) PieceAt(sq board.Square) (board.Kind, core.Color, bool) {
	return g.engine.PieceAt(sq)
}

func (g *Game) ASCII() string {
	return g.engine.ASCII()
}

func (g *Game) InitialFEN() string {
	if len(g.snapshots) > 0 {
		return g.snapshots[0].FEN
	}
	return board.StartingFEN
}

func (g *Game) touch() {
	g.updatedAt = time.Now()
}
