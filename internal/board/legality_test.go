package board

import (
	"testing"

	"chessarbiter/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleFENs = []string{
	StartingFEN,
	"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3",
	"r3k2r/pp1q1ppp/2n1bn2/3pp3/1b2P3/2NP1N2/PPPBQPPP/R3KB1R w KQkq - 0 8",
	"4k3/8/8/3q4/8/8/3P4/3K4 w - - 0 1",
	"8/P6k/8/8/8/8/6Kp/8 w - - 0 1",
}

func mustFEN(t *testing.T, fen string) *Position {
	t.Helper()
	pos, _, err := ParseFEN(fen)
	require.NoError(t, err, fen)
	return pos
}

func TestCanMoveNeverOwnOrNoop(t *testing.T) {
	for _, fen := range sampleFENs {
		pos := mustFEN(t, fen)
		for _, c := range []core.Color{core.ColorWhite, core.ColorBlack} {
			for _, pc := range pos.Player(c).Pieces() {
				for _, to := range AllSquares() {
					if !pos.CanMove(pc, to) {
						continue
					}
					assert.NotEqual(t, pc.Square(), to, "%s: %s moved onto itself", fen, pc)
					if occ := pos.At(to); occ != nil {
						assert.NotEqual(t, pc.Color(), occ.Color(), "%s: %s onto own %s", fen, pc, occ)
					}
				}
			}
		}
	}
}

func TestRookStopsAtFirstBlocker(t *testing.T) {
	pos := NewPosition()
	rook, err := pos.Place(Rook, core.ColorWhite, sq(t, "a1"))
	require.NoError(t, err)
	_, err = pos.Place(Pawn, core.ColorWhite, sq(t, "a4"))
	require.NoError(t, err)
	_, err = pos.Place(Knight, core.ColorBlack, sq(t, "a6"))
	require.NoError(t, err)

	assert.True(t, pos.CanMove(rook, sq(t, "a2")))
	assert.True(t, pos.CanMove(rook, sq(t, "a3")))
	assert.False(t, pos.CanMove(rook, sq(t, "a4")), "own piece")
	assert.False(t, pos.CanMove(rook, sq(t, "a5")), "behind own piece")
	assert.False(t, pos.CanMove(rook, sq(t, "a6")), "hostile piece behind own piece")
	assert.True(t, pos.CanMove(rook, sq(t, "h1")))
	assert.False(t, pos.CanMove(rook, sq(t, "b2")), "rook cannot move diagonally")
}

func TestGeometryPerKind(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		from  string
		legal []string
		not   []string
	}{
		{"bishop", Bishop, "c1", []string{"a3", "h6", "d2"}, []string{"c2", "d1", "e2"}},
		{"queen", Queen, "d4", []string{"d8", "a4", "a7", "h8", "g1"}, []string{"e6", "c7"}},
		{"knight", Knight, "g1", []string{"f3", "h3", "e2"}, []string{"g3", "f2", "e1"}},
		{"king", King, "e4", []string{"e5", "d3", "f4"}, []string{"e6", "g4", "c2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := NewPosition()
			pc, err := pos.Place(tt.kind, core.ColorWhite, sq(t, tt.from))
			require.NoError(t, err)
			for _, to := range tt.legal {
				assert.True(t, pos.CanMove(pc, sq(t, to)), "%s %s-%s", tt.kind, tt.from, to)
			}
			for _, to := range tt.not {
				assert.False(t, pos.CanMove(pc, sq(t, to)), "%s %s-%s", tt.kind, tt.from, to)
			}
		})
	}
}

func TestPawnDoubleStepOnlyFromOrigin(t *testing.T) {
	pos := mustFEN(t, StartingFEN)
	pawn := pos.At(sq(t, "e2"))
	require.NotNil(t, pawn)

	assert.True(t, pos.CanMove(pawn, sq(t, "e4")))
	assert.True(t, pos.CanMove(pawn, sq(t, "e3")))
	assert.False(t, pos.CanMove(pawn, sq(t, "e5")))
	assert.False(t, pos.CanMove(pawn, sq(t, "d3")), "diagonal needs a capture")

	_, err := pos.Commit(pawn, sq(t, "e3"))
	require.NoError(t, err)
	assert.True(t, pawn.Moved())
	assert.False(t, pos.CanMove(pawn, sq(t, "e5")), "double step after moving")
	assert.True(t, pos.CanMove(pawn, sq(t, "e4")))

	// A blocked intervening square also stops the double step
	d2 := pos.At(sq(t, "d2"))
	_, err = pos.Place(Knight, core.ColorBlack, sq(t, "d3"))
	require.NoError(t, err)
	assert.False(t, pos.CanMove(d2, sq(t, "d4")))
	assert.False(t, pos.CanMove(d2, sq(t, "d3")))
	assert.True(t, pos.CanMove(pos.At(sq(t, "c2")), sq(t, "d3")), "capture diagonally")
}

func TestBlackPawnsAdvanceDownward(t *testing.T) {
	pos := mustFEN(t, StartingFEN)
	pawn := pos.At(sq(t, "d7"))

	assert.True(t, pos.CanMove(pawn, sq(t, "d5")))
	assert.True(t, pos.CanMove(pawn, sq(t, "d6")))
	assert.False(t, pos.CanMove(pawn, sq(t, "d8")))
}

func TestIsLegalRejectsPinnedPiece(t *testing.T) {
	// White bishop on e2 is pinned by the rook on e8
	pos := mustFEN(t, "4r1k1/8/8/8/8/8/4B3/4K3 w - - 0 1")
	bishop := pos.At(sq(t, "e2"))

	assert.True(t, pos.CanMove(bishop, sq(t, "d3")))
	assert.False(t, pos.IsLegal(bishop, sq(t, "d3")))
	assert.Empty(t, pos.LegalMoves(bishop))
}

func TestKingCannotStepIntoAttack(t *testing.T) {
	pos := mustFEN(t, "3r2k1/8/8/8/8/8/8/4K3 w - - 0 1")
	king := pos.At(sq(t, "e1"))

	assert.False(t, pos.CanMove(king, sq(t, "d1")))
	assert.False(t, pos.CanMove(king, sq(t, "d2")))
	assert.True(t, pos.CanMove(king, sq(t, "e2")))
	assert.True(t, pos.CanMove(king, sq(t, "f1")))

	// The raw predicate ignores the self-check gate
	assert.True(t, pos.Attacks(king, sq(t, "d1")))
}

func TestInCheckAndAttackers(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/1b6/8/8/4K2r w - - 0 1")

	assert.True(t, pos.InCheck(core.ColorWhite))
	assert.Len(t, pos.Attackers(core.ColorWhite), 2)
	assert.False(t, pos.InCheck(core.ColorBlack))
}
