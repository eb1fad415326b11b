package board

import (
	"strings"

	"chessarbiter/internal/core"
)

// Kind is the closed set of chess piece variants
type Kind uint8

const (
	Pawn Kind = iota + 1
	Rook
	Bishop
	Knight
	Queen
	King
)

var kindNames = map[Kind]string{
	Pawn:   "Pawn",
	Rook:   "Rook",
	Bishop: "Bishop",
	Knight: "Knight",
	Queen:  "Queen",
	King:   "King",
}

var kindLetters = map[Kind]byte{
	Pawn:   'P',
	Rook:   'R',
	Bishop: 'B',
	Knight: 'N',
	Queen:  'Q',
	King:   'K',
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "None"
}

// Letter returns the upper-case FEN letter of the kind
func (k Kind) Letter() byte {
	return kindLetters[k]
}

// Promotable reports whether a pawn may be replaced by this kind
func (k Kind) Promotable() bool {
	return k == Queen || k == Knight || k == Rook || k == Bishop
}

// ParseKind accepts a FEN letter in either case or a full name
func ParseKind(s string) (Kind, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		up := strings.ToUpper(s)[0]
		for k, l := range kindLetters {
			if l == up {
				return k, true
			}
		}
		return 0, false
	}
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return k, true
		}
	}
	return 0, false
}

// Player owns a set of pieces and advances its pawns along direction
type Player struct {
	color     core.Color
	direction int
	pieces    []*Piece
}

func newPlayer(color core.Color) *Player {
	dir := 1
	if color == core.ColorBlack {
		dir = -1
	}
	return &Player{color: color, direction: dir}
}

func (p *Player) Color() core.Color { return p.color }
func (p *Player) Direction() int    { return p.direction }

// Pieces returns a copy of the owned set in placement order
func (p *Player) Pieces() []*Piece {
	out := make([]*Piece, len(p.pieces))
	copy(out, p.pieces)
	return out
}

// King returns the player's king, nil if it was never placed
func (p *Player) King() *Piece {
	for _, pc := range p.pieces {
		if pc.kind == King {
			return pc
		}
	}
	return nil
}

// homeRank is the rank the player's back row sits on
func (p *Player) homeRank() int {
	if p.direction > 0 {
		return 0
	}
	return Size - 1
}

// lastRank is the farthest rank in the player's direction
func (p *Player) lastRank() int {
	return Size - 1 - p.homeRank()
}

func (p *Player) pawnRank() int {
	return p.homeRank() + p.direction
}

// remove drops pc from the owned set and returns the index it held
func (p *Player) remove(pc *Piece) int {
	for i, owned := range p.pieces {
		if owned == pc {
			p.pieces = append(p.pieces[:i], p.pieces[i+1:]...)
			return i
		}
	}
	return -1
}

// insert puts pc back at index i, restoring the order remove observed
func (p *Player) insert(i int, pc *Piece) {
	if i < 0 || i > len(p.pieces) {
		i = len(p.pieces)
	}
	p.pieces = append(p.pieces, nil)
	copy(p.pieces[i+1:], p.pieces[i:])
	p.pieces[i] = pc
}

// Piece is one occupant of the board
type Piece struct {
	kind     Kind
	owner    *Player
	square   Square
	previous Square
	origin   Square
	moved    bool
}

func (pc *Piece) Kind() Kind         { return pc.kind }
func (pc *Piece) Owner() *Player     { return pc.owner }
func (pc *Piece) Color() core.Color  { return pc.owner.color }
func (pc *Piece) Square() Square     { return pc.square }
func (pc *Piece) Previous() Square   { return pc.previous }
func (pc *Piece) Origin() Square     { return pc.origin }
func (pc *Piece) Moved() bool        { return pc.moved }
func (pc *Piece) OnBoard() bool      { return pc.square.Valid() }
func (pc *Piece) IsKind(k Kind) bool { return pc != nil && pc.kind == k }

// Letter is the FEN letter, upper case for White
func (pc *Piece) Letter() byte {
	l := pc.kind.Letter()
	if pc.owner.color == core.ColorBlack {
		l += 'a' - 'A'
	}
	return l
}

// OnLastRank reports whether a pawn has reached its promotion rank
func (pc *Piece) OnLastRank() bool {
	return pc.kind == Pawn && pc.square.Valid() && pc.square.Y() == pc.owner.lastRank()
}

func (pc *Piece) String() string {
	return pc.owner.color.Name() + " " + pc.kind.String() + " @ " + pc.square.String()
}
