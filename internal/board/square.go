package board

import "fmt"

const Size = 8

// Square identifies one cell by file (x) and rank (y), both zero based.
// a1 is {0,0}, h8 is {7,7}.
type Square struct {
	x, y int8
}

// NoSquare marks a piece that is not on the board
var NoSquare = Square{-1, -1}

// NewSquare validates the coordinates before constructing the square
func NewSquare(x, y int) (Square, error) {
	if x < 0 || x >= Size || y < 0 || y >= Size {
		return NoSquare, fmt.Errorf("%w: (%d,%d)", ErrInvalidSquare, x, y)
	}
	return Square{int8(x), int8(y)}, nil
}

// MustSquare is NewSquare for coordinates known to be in range
func MustSquare(x, y int) Square {
	sq, err := NewSquare(x, y)
	if err != nil {
		panic(err)
	}
	return sq
}

// ParseSquare reads algebraic notation such as "e4"
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	file := s[0]
	if file >= 'A' && file <= 'H' {
		file += 'a' - 'A'
	}
	if file < 'a' || file > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return Square{int8(file - 'a'), int8(s[1] - '1')}, nil
}

func (s Square) X() int { return int(s.x) }
func (s Square) Y() int { return int(s.y) }

// Valid is false only for NoSquare
func (s Square) Valid() bool {
	return s.x >= 0 && s.x < Size && s.y >= 0 && s.y < Size
}

// Offset returns the square shifted by (dx,dy) and whether it is still on the board
func (s Square) Offset(dx, dy int) (Square, bool) {
	sq, err := NewSquare(int(s.x)+dx, int(s.y)+dy)
	return sq, err == nil
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+s.x, '1'+s.y)
}

// AllSquares lists the 64 squares rank by rank from a1
func AllSquares() []Square {
	squares := make([]Square, 0, Size*Size)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			squares = append(squares, Square{int8(x), int8(y)})
		}
	}
	return squares
}
