package board

import "chessarbiter/internal/core"

// undo holds exactly the fields a speculative move touches
type undo struct {
	piece      *Piece
	from       Square
	to         Square
	previous   Square
	moved      bool
	captured   *Piece
	capturedAt int
}

// apply moves pc to to, displacing and un-owning any occupant, and returns the
// record needed to restore the prior state
func (pos *Position) apply(pc *Piece, to Square) undo {
	u := undo{
		piece:    pc,
		from:     pc.square,
		to:       to,
		previous: pc.previous,
		moved:    pc.moved,
	}

	if occ := pos.board.At(to); occ != nil {
		u.captured = occ
		u.capturedAt = occ.owner.remove(occ)
		occ.square = NoSquare
	}

	pos.board.Set(u.from, nil)
	pos.board.Set(to, pc)
	pc.previous = u.from
	pc.square = to
	return u
}

func (pos *Position) revert(u undo) {
	pc := u.piece
	pos.board.Set(u.to, u.captured)
	pos.board.Set(u.from, pc)
	pc.square = u.from
	pc.previous = u.previous
	pc.moved = u.moved

	if u.captured != nil {
		u.captured.square = u.to
		u.captured.owner.insert(u.capturedAt, u.captured)
	}
}

// Simulate provisionally moves pc to to, evaluates inspect against the resulting
// position and restores the prior state before returning, whatever inspect does.
func (pos *Position) Simulate(pc *Piece, to Square, inspect func() bool) bool {
	if pc == nil || !pc.OnBoard() || !to.Valid() || to == pc.square {
		return false
	}
	u := pos.apply(pc, to)
	defer pos.revert(u)
	return inspect()
}

// WouldBeInCheck reports whether moving pc to to leaves its own king attacked.
// Moves the simulator cannot apply count as unsafe.
func (pos *Position) WouldBeInCheck(pc *Piece, to Square) bool {
	if pc == nil || !pc.OnBoard() || !to.Valid() || to == pc.square {
		return true
	}
	color := pc.owner.color
	return pos.Simulate(pc, to, func() bool {
		return pos.InCheck(color)
	})
}

// InCheck reports whether any opposing piece's raw predicate reaches c's king
func (pos *Position) InCheck(c core.Color) bool {
	king := pos.Player(c).King()
	if king == nil || !king.OnBoard() {
		return false
	}
	return len(pos.Attackers(c)) > 0
}

// Attackers lists the opposing pieces that currently reach c's king
func (pos *Position) Attackers(c core.Color) []*Piece {
	king := pos.Player(c).King()
	if king == nil || !king.OnBoard() {
		return nil
	}
	var out []*Piece
	for _, pc := range pos.Opponent(c).pieces {
		if pos.Attacks(pc, king.square) {
			out = append(out, pc)
		}
	}
	return out
}
