// Package engine is the turn and check arbiter over a board.Position. It owns the
// position exclusively and accepts one external input at a time.
package engine

import (
	"fmt"

	"chessarbiter/internal/board"
	"chessarbiter/internal/core"
)

type Phase int

const (
	AwaitingSelection Phase = iota
	AwaitingDestination
	PromotionPending
	Checkmate
)

func (p Phase) String() string {
	switch p {
	case AwaitingDestination:
		return "awaiting destination"
	case PromotionPending:
		return "promotion pending"
	case Checkmate:
		return "checkmate"
	default:
		return "awaiting selection"
	}
}

type SelectionResult int

const (
	SelectNone SelectionResult = iota
	SelectPiece
	SelectRejected
)

func (r SelectionResult) String() string {
	switch r {
	case SelectPiece:
		return "selected"
	case SelectRejected:
		return "rejected"
	default:
		return "none"
	}
}

// Selection reports what a SelectSquare call found on the square
type Selection struct {
	Result SelectionResult
	Square board.Square
	Owner  core.Color
	Kind   board.Kind
}

type Outcome int

const (
	Applied Outcome = iota
	PromotionRequired
)

type CheckState int

const (
	CheckNone CheckState = iota
	CheckOnly
	CheckMate
)

func (s CheckState) String() string {
	switch s {
	case CheckOnly:
		return "check"
	case CheckMate:
		return "checkmate"
	default:
		return "none"
	}
}

// CheckStatus is the check situation of Player, the side to move
type CheckStatus struct {
	State  CheckState
	Player core.Color
}

// MoveResult describes a committed move. Status is only meaningful once the turn
// has ended, i.e. when Outcome is Applied.
type MoveResult struct {
	Outcome   Outcome
	Move      Move
	Piece     board.Kind
	Color     core.Color
	Captured  board.Kind // zero when nothing was taken
	Castled   bool
	Promotion board.Kind
	Status    CheckStatus
}

type config struct {
	fen string
}

type Option func(*config)

// FromFEN starts the engine from an arbitrary position instead of the initial layout
func FromFEN(fen string) Option {
	return func(c *config) {
		c.fen = fen
	}
}

type Engine struct {
	initialFEN string
	pos        *board.Position
	active     core.Color
	halfMove   int
	fullMove   int

	phase    Phase
	selected *board.Piece
	pending  *board.Piece
	result   MoveResult
	status   CheckStatus
}

// New creates an engine for a new game
func New(opts ...Option) (*Engine, error) {
	cfg := config{fen: board.StartingFEN}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{initialFEN: cfg.fen}
	if err := e.load(cfg.fen); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) load(fen string) error {
	pos, setup, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}
	e.pos = pos
	e.active = setup.Active
	e.halfMove = setup.HalfMove
	e.fullMove = setup.FullMove
	e.phase = AwaitingSelection
	e.selected = nil
	e.pending = nil
	e.result = MoveResult{}
	e.status = e.evaluate(e.active)
	if e.status.State == CheckMate {
		e.phase = Checkmate
	}
	return nil
}

// Reset discards all mutable state and rebuilds the starting position
func (e *Engine) Reset() {
	if err := e.load(e.initialFEN); err != nil {
		// initialFEN was accepted by New
		panic(fmt.Sprintf("engine: reload of %q failed: %v", e.initialFEN, err))
	}
}

// SelectSquare picks the piece the next move will be made with. An empty square
// clears any selection; an opposing piece is rejected with ErrWrongTurn.
func (e *Engine) SelectSquare(sq board.Square) (Selection, error) {
	if err := e.ready(); err != nil {
		return Selection{Result: SelectRejected, Square: sq}, err
	}
	if !sq.Valid() {
		return Selection{Result: SelectRejected, Square: sq}, fmt.Errorf("%w: %s", board.ErrInvalidSquare, sq)
	}

	pc := e.pos.At(sq)
	if pc == nil {
		e.selected = nil
		e.phase = AwaitingSelection
		return Selection{Result: SelectNone, Square: sq}, nil
	}

	sel := Selection{Square: sq, Owner: pc.Color(), Kind: pc.Kind()}
	if pc.Color() != e.active {
		sel.Result = SelectRejected
		return sel, fmt.Errorf("%w: %s belongs to %s", ErrWrongTurn, sq, pc.Color().Name())
	}

	e.selected = pc
	e.phase = AwaitingDestination
	sel.Result = SelectPiece
	return sel, nil
}

// Cancel drops the current selection
func (e *Engine) Cancel() {
	if e.phase == AwaitingDestination {
		e.selected = nil
		e.phase = AwaitingSelection
	}
}

// MoveSelected moves the selected piece to to
func (e *Engine) MoveSelected(to board.Square) (MoveResult, error) {
	if err := e.ready(); err != nil {
		return MoveResult{}, err
	}
	if e.selected == nil {
		return MoveResult{}, ErrNoSelection
	}
	return e.AttemptMove(e.selected.Square(), to)
}

// AttemptMove validates and commits from-to for the side to move. A rejected move
// leaves the engine exactly as it was.
func (e *Engine) AttemptMove(from, to board.Square) (MoveResult, error) {
	if err := e.ready(); err != nil {
		return MoveResult{}, err
	}
	if !from.Valid() || !to.Valid() {
		return MoveResult{}, fmt.Errorf("%w: %s-%s", board.ErrInvalidSquare, from, to)
	}

	pc := e.pos.At(from)
	if pc == nil {
		return MoveResult{}, fmt.Errorf("%w: no piece on %s", ErrIllegalMove, from)
	}
	if pc.Color() != e.active {
		return MoveResult{}, fmt.Errorf("%w: %s moves next", ErrWrongTurn, e.active.Name())
	}
	if !e.pos.IsLegal(pc, to) {
		return MoveResult{}, fmt.Errorf("%w: %s %s to %s", ErrIllegalMove, pc.Kind(), from, to)
	}

	committed, err := e.pos.Commit(pc, to)
	if err != nil {
		return MoveResult{}, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}

	res := MoveResult{
		Outcome: Applied,
		Move:    Move{From: from, To: to},
		Piece:   pc.Kind(),
		Color:   pc.Color(),
		Castled: committed.Rook != nil,
	}
	if committed.Captured != nil {
		res.Captured = committed.Captured.Kind()
	}
	if pc.Kind() == board.Pawn || committed.Captured != nil {
		e.halfMove = 0
	} else {
		e.halfMove++
	}
	e.selected = nil

	if pc.OnLastRank() {
		res.Outcome = PromotionRequired
		e.pending = pc
		e.result = res
		e.phase = PromotionPending
		return res, nil
	}

	return e.endTurn(res), nil
}

func (e *Engine) endTurn(res MoveResult) MoveResult {
	if e.active == core.ColorBlack {
		e.fullMove++
	}
	e.active = core.OppositeColor(e.active)
	e.pending = nil
	e.phase = AwaitingSelection

	e.status = e.evaluate(e.active)
	if e.status.State == CheckMate {
		e.phase = Checkmate
	}
	res.Status = e.status
	e.result = res
	return res
}

// evaluate runs check detection for c and, when in check, the checkmate search
func (e *Engine) evaluate(c core.Color) CheckStatus {
	if !e.pos.InCheck(c) {
		return CheckStatus{State: CheckNone, Player: c}
	}
	if e.hasEscape(c) {
		return CheckStatus{State: CheckOnly, Player: c}
	}
	return CheckStatus{State: CheckMate, Player: c}
}

// hasEscape tries every owned piece on every square and reports whether any
// permitted move leaves c's king safe
func (e *Engine) hasEscape(c core.Color) bool {
	squares := board.AllSquares()
	for _, pc := range e.pos.Player(c).Pieces() {
		for _, sq := range squares {
			if !e.pos.CanMove(pc, sq) {
				continue
			}
			escaped := e.pos.Simulate(pc, sq, func() bool {
				return !e.pos.InCheck(c)
			})
			if escaped {
				return true
			}
		}
	}
	return false
}

func (e *Engine) ready() error {
	switch e.phase {
	case Checkmate:
		return ErrGameOver
	case PromotionPending:
		return ErrPromotionPending
	}
	return nil
}

// Status reports check or checkmate for the side to move
func (e *Engine) Status() CheckStatus {
	return e.status
}

// State maps the engine onto the host's game state
func (e *Engine) State() core.State {
	switch e.phase {
	case PromotionPending:
		return core.StatePromotion
	case Checkmate:
		return core.WinnerState(core.OppositeColor(e.status.Player))
	}
	return core.StateOngoing
}

func (e *Engine) Phase() Phase           { return e.phase }
func (e *Engine) Active() core.Color     { return e.active }
func (e *Engine) InitialFEN() string     { return e.initialFEN }
func (e *Engine) LastResult() MoveResult { return e.result }

// Selected returns the selected square, if any
func (e *Engine) Selected() (board.Square, bool) {
	if e.selected == nil {
		return board.NoSquare, false
	}
	return e.selected.Square(), true
}

// PendingPromotion returns the square of the pawn waiting to be promoted
func (e *Engine) PendingPromotion() (board.Square, bool) {
	if e.pending == nil {
		return board.NoSquare, false
	}
	return e.pending.Square(), true
}

func (e *Engine) Occupancy() []board.Placement {
	return e.pos.Occupancy()
}

// PieceAt reports the kind and owner on sq
func (e *Engine) PieceAt(sq board.Square) (board.Kind, core.Color, bool) {
	pc := e.pos.At(sq)
	if pc == nil {
		return 0, 0, false
	}
	return pc.Kind(), pc.Color(), true
}

// LegalMoves lists the destinations of the piece on sq, whichever side owns it
func (e *Engine) LegalMoves(sq board.Square) ([]board.Square, error) {
	if !sq.Valid() {
		return nil, fmt.Errorf("%w: %s", board.ErrInvalidSquare, sq)
	}
	pc := e.pos.At(sq)
	if pc == nil {
		return nil, nil
	}
	return e.pos.LegalMoves(pc), nil
}

func (e *Engine) FEN() string {
	return e.pos.FEN(board.Setup{Active: e.active, HalfMove: e.halfMove, FullMove: e.fullMove})
}

func (e *Engine) ASCII() string {
	return e.pos.ToASCII()
}
