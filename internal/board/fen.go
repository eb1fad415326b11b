package board

import (
	"fmt"
	"strconv"
	"strings"

	"chessarbiter/internal/core"

	"github.com/hashicorp/go-multierror"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

const maxPiecesPerSide = 16

// Setup carries the FEN fields that belong to the game rather than the board
type Setup struct {
	Active   core.Color
	HalfMove int
	FullMove int
}

// ParseFEN builds a position from a FEN string. The en passant field is accepted
// but ignored. Moved flags are derived: kings and rooks count as unmoved only
// where the castling field grants a right, pawns only on their starting rank.
func ParseFEN(fen string) (*Position, Setup, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return nil, Setup{}, fmt.Errorf("%w: expected 4 to 6 fields, got %d", ErrInvalidFEN, len(parts))
	}

	pos := NewPosition()
	setup := Setup{HalfMove: 0, FullMove: 1}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != Size {
		return nil, Setup{}, fmt.Errorf("%w: expected 8 ranks", ErrInvalidFEN)
	}

	for r, row := range ranks {
		y := Size - 1 - r
		x := 0
		for _, ch := range row {
			if ch >= '1' && ch <= '8' {
				x += int(ch - '0')
				continue
			}
			if x >= Size {
				return nil, Setup{}, fmt.Errorf("%w: too many pieces in rank %d", ErrInvalidFEN, y+1)
			}
			kind, ok := ParseKind(string(ch))
			if !ok {
				return nil, Setup{}, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, ch)
			}
			color := core.ColorWhite
			if ch >= 'a' && ch <= 'z' {
				color = core.ColorBlack
			}
			if _, err := pos.Place(kind, color, MustSquare(x, y)); err != nil {
				return nil, Setup{}, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
			}
			x++
		}
		if x != Size {
			return nil, Setup{}, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, y+1, x)
		}
	}

	switch parts[1] {
	case "w":
		setup.Active = core.ColorWhite
	case "b":
		setup.Active = core.ColorBlack
	default:
		return nil, Setup{}, fmt.Errorf("%w: turn must be 'w' or 'b'", ErrInvalidFEN)
	}

	if err := pos.applyCastlingRights(parts[2]); err != nil {
		return nil, Setup{}, err
	}
	pos.markPawnsMoved()

	if parts[3] != "-" {
		if _, err := ParseSquare(parts[3]); err != nil {
			return nil, Setup{}, fmt.Errorf("%w: en passant field %q", ErrInvalidFEN, parts[3])
		}
	}

	if len(parts) > 4 {
		n, err := strconv.Atoi(parts[4])
		if err != nil || n < 0 {
			return nil, Setup{}, fmt.Errorf("%w: halfmove counter", ErrInvalidFEN)
		}
		setup.HalfMove = n
	}
	if len(parts) > 5 {
		n, err := strconv.Atoi(parts[5])
		if err != nil || n < 1 {
			return nil, Setup{}, fmt.Errorf("%w: fullmove counter", ErrInvalidFEN)
		}
		setup.FullMove = n
	}

	if err := pos.Validate(setup.Active); err != nil {
		return nil, Setup{}, fmt.Errorf("%w: %w", ErrInvalidFEN, err)
	}
	return pos, setup, nil
}

// applyCastlingRights marks every king and rook as moved except those the
// castling field vouches for
func (pos *Position) applyCastlingRights(field string) error {
	for _, p := range []*Player{pos.white, pos.black} {
		for _, pc := range p.pieces {
			if pc.kind == King || pc.kind == Rook {
				pc.moved = true
			}
		}
	}
	if field == "-" {
		return nil
	}

	for _, ch := range field {
		color := core.ColorWhite
		if ch >= 'a' && ch <= 'z' {
			color = core.ColorBlack
		}
		player := pos.Player(color)
		rank := player.homeRank()

		var rookX int
		switch ch {
		case 'K', 'k':
			rookX = Size - 1
		case 'Q', 'q':
			rookX = 0
		default:
			return fmt.Errorf("%w: castling field %q", ErrInvalidFEN, field)
		}

		king := pos.board.At(MustSquare(4, rank))
		rook := pos.board.At(MustSquare(rookX, rank))
		if king == nil || king.kind != King || king.owner != player ||
			rook == nil || rook.kind != Rook || rook.owner != player {
			return fmt.Errorf("%w: castling right %c without king and rook in place", ErrInvalidFEN, ch)
		}
		king.moved = false
		rook.moved = false
	}
	return nil
}

func (pos *Position) markPawnsMoved() {
	for _, p := range []*Player{pos.white, pos.black} {
		for _, pc := range p.pieces {
			if pc.kind == Pawn && pc.square.Y() != p.pawnRank() {
				pc.moved = true
			}
		}
	}
}

// Validate collects every reason the position cannot be played from with
// active to move
func (pos *Position) Validate(active core.Color) error {
	var errs *multierror.Error

	for _, p := range []*Player{pos.white, pos.black} {
		kings := 0
		for _, pc := range p.pieces {
			switch pc.kind {
			case King:
				kings++
			case Pawn:
				if y := pc.square.Y(); y == 0 || y == Size-1 {
					errs = multierror.Append(errs, fmt.Errorf("%w: %s pawn on %s", ErrInvalidPosition, p.color.Name(), pc.square))
				}
			}
		}
		if kings != 1 {
			errs = multierror.Append(errs, fmt.Errorf("%w: %s has %d kings", ErrInvalidPosition, p.color.Name(), kings))
		}
		if len(p.pieces) > maxPiecesPerSide {
			errs = multierror.Append(errs, fmt.Errorf("%w: %s has %d pieces", ErrInvalidPosition, p.color.Name(), len(p.pieces)))
		}
	}

	// Only meaningful once both kings exist
	if errs.ErrorOrNil() == nil && pos.InCheck(core.OppositeColor(active)) {
		errs = multierror.Append(errs, fmt.Errorf("%w: %s to move but %s is in check",
			ErrInvalidPosition, active.Name(), core.OppositeColor(active).Name()))
	}

	return errs.ErrorOrNil()
}

// FEN renders the position with the game fields from setup
func (pos *Position) FEN(setup Setup) string {
	var sb strings.Builder
	for y := Size - 1; y >= 0; y-- {
		empty := 0
		for x := 0; x < Size; x++ {
			pc := pos.board.cells[x][y]
			if pc == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(pc.Letter())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if y > 0 {
			sb.WriteByte('/')
		}
	}

	fullMove := setup.FullMove
	if fullMove < 1 {
		fullMove = 1
	}
	return fmt.Sprintf("%s %s %s - %d %d", sb.String(), setup.Active, pos.castlingRights(), setup.HalfMove, fullMove)
}

// castlingRights derives the FEN castling field from moved flags
func (pos *Position) castlingRights() string {
	var sb strings.Builder
	for _, p := range []*Player{pos.white, pos.black} {
		king := p.King()
		for _, side := range []struct {
			rookX  int
			letter byte
		}{{Size - 1, 'K'}, {0, 'Q'}} {
			if king == nil || king.moved || king.square != MustSquare(4, p.homeRank()) {
				break
			}
			rookSq := MustSquare(side.rookX, p.homeRank())
			rook := pos.board.At(rookSq)
			if rook == nil || rook.kind != Rook || rook.owner != p || rook.moved || rook.origin != rookSq {
				continue
			}
			letter := side.letter
			if p.color == core.ColorBlack {
				letter += 'a' - 'A'
			}
			sb.WriteByte(letter)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}
