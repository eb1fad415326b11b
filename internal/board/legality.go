package board

import "chessarbiter/internal/core"

// CanMove is the full legality predicate for pc moving to to: the shared guards,
// the variant geometry, and for the King its self-check gate and castling. It does
// not check whether a non-king move uncovers the mover's king; IsLegal adds that.
func (pos *Position) CanMove(pc *Piece, to Square) bool {
	if !pos.guards(pc, to) {
		return false
	}
	if pc.kind == King {
		return pos.kingCanMove(pc, to)
	}
	return pos.geometry(pc, to)
}

// IsLegal is CanMove followed by the simulator's king safety check
func (pos *Position) IsLegal(pc *Piece, to Square) bool {
	return pos.CanMove(pc, to) && !pos.WouldBeInCheck(pc, to)
}

// Attacks is the raw predicate used by check probes. The King variant is plain
// one-step geometry here and never re-enters its own self-check gate.
func (pos *Position) Attacks(pc *Piece, to Square) bool {
	return pos.guards(pc, to) && pos.geometry(pc, to)
}

// guards rejects no-op moves and destinations held by the mover's own side
func (pos *Position) guards(pc *Piece, to Square) bool {
	if pc == nil || !pc.OnBoard() || !to.Valid() {
		return false
	}
	if to == pc.square {
		return false
	}
	if occ := pos.board.At(to); occ != nil && occ.owner == pc.owner {
		return false
	}
	return true
}

func (pos *Position) geometry(pc *Piece, to Square) bool {
	dx := to.X() - pc.square.X()
	dy := to.Y() - pc.square.Y()

	switch pc.kind {
	case Pawn:
		return pos.pawnGeometry(pc, to, dx, dy)
	case Rook:
		return pos.straightClear(pc.square, to, dx, dy)
	case Bishop:
		return pos.diagonalClear(pc.square, to, dx, dy)
	case Queen:
		return pos.straightClear(pc.square, to, dx, dy) || pos.diagonalClear(pc.square, to, dx, dy)
	case Knight:
		adx, ady := abs(dx), abs(dy)
		return (adx == 1 && ady == 2) || (adx == 2 && ady == 1)
	case King:
		return abs(dx) <= 1 && abs(dy) <= 1
	}
	return false
}

func (pos *Position) pawnGeometry(pc *Piece, to Square, dx, dy int) bool {
	dir := pc.owner.direction
	target := pos.board.At(to)

	switch {
	case dx == 0 && dy == dir:
		return target == nil
	case dx == 0 && dy == 2*dir:
		if pc.moved || pc.square != pc.origin || target != nil {
			return false
		}
		return pos.board.pathClear(pc.square, to)
	case abs(dx) == 1 && dy == dir:
		// Captures only; guards already excluded own pieces
		return target != nil
	}
	return false
}

// straightClear requires exactly one shared axis and an empty path
func (pos *Position) straightClear(from, to Square, dx, dy int) bool {
	if (dx == 0) == (dy == 0) {
		return false
	}
	return pos.board.pathClear(from, to)
}

func (pos *Position) diagonalClear(from, to Square, dx, dy int) bool {
	if dx == 0 || abs(dx) != abs(dy) {
		return false
	}
	return pos.board.pathClear(from, to)
}

func (pos *Position) kingCanMove(k *Piece, to Square) bool {
	dx := to.X() - k.square.X()
	dy := to.Y() - k.square.Y()
	if abs(dx) <= 1 && abs(dy) <= 1 {
		return !pos.WouldBeInCheck(k, to)
	}
	return pos.canCastle(k, to)
}

// canCastle checks the full castling conjunction for a two-file king move
func (pos *Position) canCastle(k *Piece, to Square) bool {
	if _, ok := pos.castleRook(k, to); !ok {
		return false
	}
	if pos.InCheck(k.owner.color) {
		return false
	}
	transit := MustSquare(k.square.X()+sign(to.X()-k.square.X()), k.square.Y())
	if pos.WouldBeInCheck(k, transit) {
		return false
	}
	return !pos.WouldBeInCheck(k, to)
}

// castleRook returns the rook a two-file king move would castle with, provided
// the static conditions hold: neither piece has moved, the rook sits on its home
// corner and everything between them is empty.
func (pos *Position) castleRook(k *Piece, to Square) (*Piece, bool) {
	if k == nil || k.kind != King || k.moved || !k.OnBoard() || !to.Valid() {
		return nil, false
	}
	dx := to.X() - k.square.X()
	if to.Y() != k.square.Y() || abs(dx) != 2 {
		return nil, false
	}

	rookX := 0
	if dx > 0 {
		rookX = Size - 1
	}
	rookSq := MustSquare(rookX, k.square.Y())
	rook := pos.board.At(rookSq)
	if rook == nil || rook.kind != Rook || rook.owner != k.owner || rook.moved || rook.origin != rookSq {
		return nil, false
	}
	if !pos.board.pathClear(k.square, rookSq) {
		return nil, false
	}
	return rook, true
}

// CanCastle exposes castling eligibility for the king of color towards to
func (pos *Position) CanCastle(c core.Color, to Square) bool {
	k := pos.Player(c).King()
	if k == nil {
		return false
	}
	return pos.guards(k, to) && pos.canCastle(k, to)
}
