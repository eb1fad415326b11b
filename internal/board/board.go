package board

import (
	"fmt"
	"strings"
)

// Board is the 8x8 grid of optional occupants, indexed [file][rank]
type Board struct {
	cells [Size][Size]*Piece
}

// At returns the occupant of sq, nil when empty
func (b *Board) At(sq Square) *Piece {
	if !sq.Valid() {
		return nil
	}
	return b.cells[sq.x][sq.y]
}

// Set replaces the occupant of sq; nil empties it
func (b *Board) Set(sq Square, p *Piece) {
	if !sq.Valid() {
		return
	}
	b.cells[sq.x][sq.y] = p
}

// ScanLine returns the squares strictly between from and to when both lie on one
// straight or diagonal ray. ok is false otherwise.
func (b *Board) ScanLine(from, to Square) (between []Square, ok bool) {
	if !from.Valid() || !to.Valid() || from == to {
		return nil, false
	}
	dx := to.X() - from.X()
	dy := to.Y() - from.Y()
	if dx != 0 && dy != 0 && abs(dx) != abs(dy) {
		return nil, false
	}

	stepX, stepY := sign(dx), sign(dy)
	x, y := from.X()+stepX, from.Y()+stepY
	for x != to.X() || y != to.Y() {
		between = append(between, Square{int8(x), int8(y)})
		x += stepX
		y += stepY
	}
	return between, true
}

// pathClear reports whether from and to share a ray with nothing in between
func (b *Board) pathClear(from, to Square) bool {
	between, ok := b.ScanLine(from, to)
	if !ok {
		return false
	}
	for _, sq := range between {
		if b.At(sq) != nil {
			return false
		}
	}
	return true
}

// ToASCII creates an ASCII representation of the board, rank 8 on top
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for y := Size - 1; y >= 0; y-- {
		sb.WriteString(fmt.Sprintf("%d ", y+1))
		for x := 0; x < Size; x++ {
			piece := b.cells[x][y]
			if piece == nil {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", piece.Letter()))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", y+1))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
