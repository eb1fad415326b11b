package board

import (
	"fmt"

	"chessarbiter/internal/core"
)

// Position is the explicit context every legality and check query runs against:
// the board plus both players and their owned sets.
type Position struct {
	board Board
	white *Player
	black *Player
}

// Placement is one occupied square as exposed to renderers
type Placement struct {
	Square Square
	Kind   Kind
	Color  core.Color
}

// Committed describes the state change a committed move produced
type Committed struct {
	Piece    *Piece
	From     Square
	To       Square
	Captured *Piece
	Rook     *Piece // non-nil when the move was a castle
	RookFrom Square
	RookTo   Square
}

// NewPosition returns an empty board with both players
func NewPosition() *Position {
	return &Position{
		white: newPlayer(core.ColorWhite),
		black: newPlayer(core.ColorBlack),
	}
}

func (pos *Position) Board() *Board {
	return &pos.board
}

func (pos *Position) At(sq Square) *Piece {
	return pos.board.At(sq)
}

func (pos *Position) Player(c core.Color) *Player {
	if c == core.ColorBlack {
		return pos.black
	}
	return pos.white
}

func (pos *Position) Opponent(c core.Color) *Player {
	return pos.Player(core.OppositeColor(c))
}

// Place creates a new unmoved piece on an empty square. The square becomes the
// piece's original square.
func (pos *Position) Place(kind Kind, color core.Color, sq Square) (*Piece, error) {
	if !sq.Valid() {
		return nil, fmt.Errorf("%w: cannot place on %s", ErrInvalidSquare, sq)
	}
	if kindNames[kind] == "" {
		return nil, fmt.Errorf("%w: unknown piece kind %d", ErrInvalidPosition, kind)
	}
	if occ := pos.board.At(sq); occ != nil {
		return nil, fmt.Errorf("%w: %s already holds %s", ErrInvalidPosition, sq, occ)
	}

	owner := pos.Player(color)
	pc := &Piece{
		kind:     kind,
		owner:    owner,
		square:   sq,
		previous: NoSquare,
		origin:   sq,
	}
	owner.pieces = append(owner.pieces, pc)
	pos.board.Set(sq, pc)
	return pc, nil
}

// Commit applies a move that has already been judged legal. Captures leave the
// board for good and a two-file king move relocates its rook.
func (pos *Position) Commit(pc *Piece, to Square) (Committed, error) {
	if pc == nil || !pc.OnBoard() || pos.board.At(pc.square) != pc {
		return Committed{}, fmt.Errorf("%w: piece is not on the board", ErrInvalidPosition)
	}
	if !to.Valid() {
		return Committed{}, fmt.Errorf("%w: destination %s", ErrInvalidSquare, to)
	}

	c := Committed{Piece: pc, From: pc.square, To: to, RookFrom: NoSquare, RookTo: NoSquare}

	rook, castling := pos.castleRook(pc, to)
	u := pos.apply(pc, to)
	pc.moved = true
	c.Captured = u.captured

	if castling {
		c.Rook = rook
		c.RookFrom = rook.square
		c.RookTo = MustSquare(to.X()-sign(to.X()-c.From.X()), to.Y())
		pos.apply(rook, c.RookTo)
		rook.moved = true
	}
	return c, nil
}

// Promote replaces a pawn with a new piece of kind on the same square. The new
// piece takes the pawn's slot in the owned set and counts as moved.
func (pos *Position) Promote(pawn *Piece, kind Kind) (*Piece, error) {
	if pawn == nil || pawn.kind != Pawn || !pawn.OnBoard() {
		return nil, fmt.Errorf("%w: no pawn to promote", ErrInvalidPosition)
	}
	if !kind.Promotable() {
		return nil, fmt.Errorf("%w: cannot promote to %s", ErrInvalidPosition, kind)
	}

	owner := pawn.owner
	sq := pawn.square
	promoted := &Piece{
		kind:     kind,
		owner:    owner,
		square:   sq,
		previous: pawn.previous,
		origin:   sq,
		moved:    true,
	}

	idx := owner.remove(pawn)
	owner.insert(idx, promoted)
	pawn.square = NoSquare
	pos.board.Set(sq, promoted)
	return promoted, nil
}

// Occupancy lists every occupied square from a1 to h8
func (pos *Position) Occupancy() []Placement {
	var out []Placement
	for _, sq := range AllSquares() {
		if pc := pos.board.At(sq); pc != nil {
			out = append(out, Placement{Square: sq, Kind: pc.kind, Color: pc.owner.color})
		}
	}
	return out
}

// LegalMoves returns every destination pc may move to without exposing its king
func (pos *Position) LegalMoves(pc *Piece) []Square {
	var out []Square
	if pc == nil || !pc.OnBoard() {
		return out
	}
	for _, sq := range AllSquares() {
		if pos.IsLegal(pc, sq) {
			out = append(out, sq)
		}
	}
	return out
}

func (pos *Position) ToASCII() string {
	return pos.board.ToASCII()
}
