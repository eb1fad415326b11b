package board

import (
	"errors"
	"testing"

	"chessarbiter/internal/core"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFENStartingPosition(t *testing.T) {
	pos, setup, err := ParseFEN(StartingFEN)
	require.NoError(t, err)

	assert.Equal(t, core.ColorWhite, setup.Active)
	assert.Equal(t, 0, setup.HalfMove)
	assert.Equal(t, 1, setup.FullMove)
	assert.Len(t, pos.Occupancy(), 32)
	assert.Len(t, pos.Player(core.ColorWhite).Pieces(), 16)

	for _, pc := range append(pos.Player(core.ColorWhite).Pieces(), pos.Player(core.ColorBlack).Pieces()...) {
		assert.False(t, pc.Moved(), pc.String())
		assert.Equal(t, pc.Square(), pc.Origin())
	}
	assert.Equal(t, StartingFEN, pos.FEN(setup))
}

func TestFENRoundTrip(t *testing.T) {
	for _, fen := range sampleFENs {
		pos, setup, err := ParseFEN(fen)
		require.NoError(t, err, fen)
		assert.Equal(t, fen, pos.FEN(setup))
	}
}

func TestParseFENOptionalCounters(t *testing.T) {
	pos, setup, err := ParseFEN("4k3/8/8/8/8/8/8/4K3 b - e3")
	require.NoError(t, err)
	assert.Equal(t, core.ColorBlack, setup.Active)
	assert.Equal(t, "4k3/8/8/8/8/8/8/4K3 b - - 0 1", pos.FEN(setup))
}

func TestParseFENMovedFlags(t *testing.T) {
	pos, _, err := ParseFEN("r3k2r/8/8/8/4P3/8/3P4/R3K2R w Kq - 0 1")
	require.NoError(t, err)

	assert.False(t, pos.At(sq(t, "e1")).Moved())
	assert.False(t, pos.At(sq(t, "h1")).Moved())
	assert.True(t, pos.At(sq(t, "a1")).Moved())
	assert.False(t, pos.At(sq(t, "a8")).Moved())
	assert.True(t, pos.At(sq(t, "h8")).Moved())
	assert.False(t, pos.At(sq(t, "d2")).Moved())
	assert.True(t, pos.At(sq(t, "e4")).Moved())
}

func TestParseFENRejects(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"too few fields", "8/8/8/8/8/8/8/8 w KQkq"},
		{"too many fields", StartingFEN + " extra"},
		{"seven ranks", "8/8/8/8/8/8/4K2k w - - 0 1"},
		{"short rank", "4k3/8/8/8/8/8/8/4K2 w - - 0 1"},
		{"long rank", "4k3/8/8/8/8/8/8/4K2RR w - - 0 1"},
		{"unknown piece", "4k3/8/8/8/8/8/8/4K2X w - - 0 1"},
		{"bad turn", "4k3/8/8/8/8/8/8/4K3 x - - 0 1"},
		{"castling without rook", "4k3/8/8/8/8/8/8/4K3 w K - 0 1"},
		{"bad castling letter", "4k3/8/8/8/8/8/8/R3K3 w A - 0 1"},
		{"bad en passant", "4k3/8/8/8/8/8/8/4K3 w - e9 0 1"},
		{"negative halfmove", "4k3/8/8/8/8/8/8/4K3 w - - -1 1"},
		{"zero fullmove", "4k3/8/8/8/8/8/8/4K3 w - - 0 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseFEN(tt.fen)
			assert.ErrorIs(t, err, ErrInvalidFEN)
		})
	}
}

func TestParseFENAggregatesPositionErrors(t *testing.T) {
	// Two white kings, no black king, and a white pawn on the back rank
	_, _, err := ParseFEN("P7/8/8/8/8/8/8/K3K3 w - - 0 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFEN)
	assert.ErrorIs(t, err, ErrInvalidPosition)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 3)
}

func TestParseFENSideNotToMoveInCheck(t *testing.T) {
	_, _, err := ParseFEN("4k3/8/8/8/8/8/8/4R1K1 w - - 0 1")
	assert.ErrorIs(t, err, ErrInvalidPosition)

	_, _, err = ParseFEN("4k3/8/8/8/8/8/8/4R1K1 b - - 0 1")
	assert.NoError(t, err)
}

func TestFENCastlingRightsFollowMoves(t *testing.T) {
	pos, setup, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	_, err = pos.Commit(pos.At(sq(t, "h1")), sq(t, "h5"))
	require.NoError(t, err)
	assert.Equal(t, "r3k2r/8/8/7R/8/8/8/R3K3 w Qkq - 0 1", pos.FEN(setup))

	_, err = pos.Commit(pos.At(sq(t, "e8")), sq(t, "d8"))
	require.NoError(t, err)
	assert.Equal(t, "r2k3r/8/8/7R/8/8/8/R3K3 w Q - 0 1", pos.FEN(setup))
}
