package engine

import (
	"testing"

	"chessarbiter/internal/board"
	"chessarbiter/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSquare(t *testing.T, s string) board.Square {
	t.Helper()
	sq, err := board.ParseSquare(s)
	require.NoError(t, err)
	return sq
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

func play(t *testing.T, e *Engine, moves ...string) MoveResult {
	t.Helper()
	var res MoveResult
	for _, s := range moves {
		m, err := ParseMove(s)
		require.NoError(t, err, s)
		res, err = e.Play(m)
		require.NoError(t, err, s)
	}
	return res
}

func TestNewGame(t *testing.T) {
	e := newEngine(t)

	assert.Equal(t, core.ColorWhite, e.Active())
	assert.Equal(t, AwaitingSelection, e.Phase())
	assert.Equal(t, CheckStatus{State: CheckNone, Player: core.ColorWhite}, e.Status())
	assert.Equal(t, board.StartingFEN, e.FEN())
	assert.Len(t, e.Occupancy(), 32)
	assert.Equal(t, core.StateOngoing, e.State())
}

func TestNewRejectsBadFEN(t *testing.T) {
	_, err := New(FromFEN("not a fen"))
	assert.ErrorIs(t, err, board.ErrInvalidFEN)
}

func TestPawnScenario(t *testing.T) {
	e := newEngine(t)

	res, err := e.AttemptMove(mustSquare(t, "e2"), mustSquare(t, "e4"))
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)
	assert.Equal(t, core.ColorBlack, e.Active())

	play(t, e, "a7a6")

	_, err = e.AttemptMove(mustSquare(t, "e4"), mustSquare(t, "e5"))
	require.NoError(t, err)

	play(t, e, "a6a5")

	// The pawn already left e2
	_, err = e.AttemptMove(mustSquare(t, "e2"), mustSquare(t, "e5"))
	assert.ErrorIs(t, err, ErrIllegalMove)

	fresh := newEngine(t)
	before := fresh.FEN()
	_, err = fresh.AttemptMove(mustSquare(t, "e2"), mustSquare(t, "e5"))
	assert.ErrorIs(t, err, ErrIllegalMove)
	assert.Equal(t, before, fresh.FEN())
	assert.Equal(t, core.ColorWhite, fresh.Active())
}

func TestWrongTurn(t *testing.T) {
	e := newEngine(t)
	before := e.FEN()

	_, err := e.AttemptMove(mustSquare(t, "e7"), mustSquare(t, "e5"))
	assert.ErrorIs(t, err, ErrWrongTurn)

	sel, err := e.SelectSquare(mustSquare(t, "d8"))
	assert.ErrorIs(t, err, ErrWrongTurn)
	assert.Equal(t, SelectRejected, sel.Result)
	assert.Equal(t, core.ColorBlack, sel.Owner)
	assert.Equal(t, board.Queen, sel.Kind)
	assert.Equal(t, AwaitingSelection, e.Phase())
	assert.Equal(t, before, e.FEN())
}

func TestSelectionFlow(t *testing.T) {
	e := newEngine(t)

	_, err := e.MoveSelected(mustSquare(t, "f3"))
	assert.ErrorIs(t, err, ErrNoSelection)

	sel, err := e.SelectSquare(mustSquare(t, "g1"))
	require.NoError(t, err)
	assert.Equal(t, SelectPiece, sel.Result)
	assert.Equal(t, board.Knight, sel.Kind)
	assert.Equal(t, AwaitingDestination, e.Phase())

	got, ok := e.Selected()
	require.True(t, ok)
	assert.Equal(t, "g1", got.String())

	// Illegal destination keeps the selection
	_, err = e.MoveSelected(mustSquare(t, "g3"))
	assert.ErrorIs(t, err, ErrIllegalMove)
	assert.Equal(t, AwaitingDestination, e.Phase())

	e.Cancel()
	assert.Equal(t, AwaitingSelection, e.Phase())
	_, ok = e.Selected()
	assert.False(t, ok)

	_, err = e.SelectSquare(mustSquare(t, "g1"))
	require.NoError(t, err)
	sel, err = e.SelectSquare(mustSquare(t, "e4"))
	require.NoError(t, err)
	assert.Equal(t, SelectNone, sel.Result)
	assert.Equal(t, AwaitingSelection, e.Phase())

	_, err = e.SelectSquare(mustSquare(t, "g1"))
	require.NoError(t, err)
	res, err := e.MoveSelected(mustSquare(t, "f3"))
	require.NoError(t, err)
	assert.Equal(t, board.Knight, res.Piece)
	assert.Equal(t, "g1f3", res.Move.String())
	assert.Equal(t, AwaitingSelection, e.Phase())
}

func TestSelectInvalidSquare(t *testing.T) {
	e := newEngine(t)
	_, err := e.SelectSquare(board.NoSquare)
	assert.ErrorIs(t, err, board.ErrInvalidSquare)
}

func TestCaptureReported(t *testing.T) {
	e := newEngine(t)
	res := play(t, e, "e2e4", "d7d5", "e4d5")

	assert.Equal(t, board.Pawn, res.Captured)
	assert.Len(t, e.Occupancy(), 31)
	assert.Equal(t, "rnbqkbnr/ppp1pppp/8/3P4/8/8/PPPP1PPP/RNBQKBNR b KQkq - 0 2", e.FEN())
}

func TestCastleThroughEngine(t *testing.T) {
	e := newEngine(t, FromFEN("r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1"))

	res := play(t, e, "e1g1")
	assert.True(t, res.Castled)
	assert.Equal(t, "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R4RK1 b kq - 1 1", e.FEN())

	res = play(t, e, "e8c8")
	assert.True(t, res.Castled)
	kind, color, ok := e.PieceAt(mustSquare(t, "d8"))
	require.True(t, ok)
	assert.Equal(t, board.Rook, kind)
	assert.Equal(t, core.ColorBlack, color)
}

func TestFoolsMate(t *testing.T) {
	e := newEngine(t)
	res := play(t, e, "f2f3", "e7e5", "g2g4", "d8h4")

	assert.Equal(t, CheckStatus{State: CheckMate, Player: core.ColorWhite}, res.Status)
	assert.Equal(t, Checkmate, e.Phase())
	assert.Equal(t, core.StateBlackWins, e.State())

	_, err := e.AttemptMove(mustSquare(t, "a2"), mustSquare(t, "a3"))
	assert.ErrorIs(t, err, ErrGameOver)
	_, err = e.SelectSquare(mustSquare(t, "a2"))
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestScholarsMate(t *testing.T) {
	e := newEngine(t)
	res := play(t, e, "e2e4", "e7e5", "d1h5", "b8c6", "f1c4", "g8f6", "h5f7")

	assert.Equal(t, CheckMate, res.Status.State)
	assert.Equal(t, core.ColorBlack, res.Status.Player)
	assert.Equal(t, core.StateWhiteWins, e.State())
}

func TestBackRankMate(t *testing.T) {
	e := newEngine(t, FromFEN("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"))
	res := play(t, e, "a1a8")
	assert.Equal(t, CheckMate, res.Status.State)

	// Same pattern with an escape square is only check
	e = newEngine(t, FromFEN("6k1/5p1p/8/8/8/8/8/R5K1 w - - 0 1"))
	res = play(t, e, "a1a8")
	assert.Equal(t, CheckOnly, res.Status.State)
	assert.Equal(t, core.ColorBlack, res.Status.Player)
	assert.Equal(t, AwaitingSelection, e.Phase())
}

func TestCheckCanBeBlocked(t *testing.T) {
	e := newEngine(t)
	res := play(t, e, "e2e4", "f7f6", "d1h5")

	assert.Equal(t, CheckStatus{State: CheckOnly, Player: core.ColorBlack}, res.Status)

	// Moves that ignore the check are illegal
	_, err := e.AttemptMove(mustSquare(t, "a7"), mustSquare(t, "a6"))
	assert.ErrorIs(t, err, ErrIllegalMove)

	res = play(t, e, "g7g6")
	assert.Equal(t, CheckNone, res.Status.State)
}

func TestStartingPositionAlreadyMated(t *testing.T) {
	e := newEngine(t, FromFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"))
	assert.Equal(t, Checkmate, e.Phase())
	assert.Equal(t, CheckMate, e.Status().State)
}

func TestPromotion(t *testing.T) {
	e := newEngine(t, FromFEN("4k3/P7/8/8/8/8/8/4K3 w - - 0 1"))

	res, err := e.AttemptMove(mustSquare(t, "a7"), mustSquare(t, "a8"))
	require.NoError(t, err)
	assert.Equal(t, PromotionRequired, res.Outcome)
	assert.Equal(t, PromotionPending, e.Phase())
	assert.Equal(t, core.StatePromotion, e.State())
	assert.Equal(t, core.ColorWhite, e.Active(), "turn does not pass before the choice")

	sq, ok := e.PendingPromotion()
	require.True(t, ok)
	assert.Equal(t, "a8", sq.String())

	_, err = e.AttemptMove(mustSquare(t, "e1"), mustSquare(t, "e2"))
	assert.ErrorIs(t, err, ErrPromotionPending)
	_, err = e.SelectSquare(mustSquare(t, "e1"))
	assert.ErrorIs(t, err, ErrPromotionPending)

	for _, bad := range []board.Kind{board.King, board.Pawn} {
		_, err = e.ChoosePromotion(bad)
		assert.ErrorIs(t, err, ErrInvalidPromotionChoice)
		assert.Equal(t, PromotionPending, e.Phase())
	}

	res, err = e.ChoosePromotion(board.Queen)
	require.NoError(t, err)
	assert.Equal(t, Applied, res.Outcome)
	assert.Equal(t, board.Queen, res.Promotion)
	assert.Equal(t, "a7a8q", res.Move.String())
	assert.Equal(t, CheckStatus{State: CheckOnly, Player: core.ColorBlack}, res.Status)
	assert.Equal(t, core.ColorBlack, e.Active())
	assert.Equal(t, "Q3k3/8/8/8/8/8/8/4K3 b - - 0 1", e.FEN())

	_, err = e.ChoosePromotion(board.Queen)
	assert.ErrorIs(t, err, ErrInvalidPromotionChoice)
}

func TestBlackPromotionByCapture(t *testing.T) {
	e := newEngine(t, FromFEN("4k3/8/8/8/8/8/6p1/4K2R b - - 0 1"))

	res := play(t, e, "g2h1n")
	assert.Equal(t, board.Rook, res.Captured)
	assert.Equal(t, board.Knight, res.Promotion)
	kind, color, ok := e.PieceAt(mustSquare(t, "h1"))
	require.True(t, ok)
	assert.Equal(t, board.Knight, kind)
	assert.Equal(t, core.ColorBlack, color)
	assert.Equal(t, 2, e.fullMove)
}

func TestPlayRejectsPromotionSuffixOnNormalMove(t *testing.T) {
	e := newEngine(t)
	m, err := ParseMove("e2e4q")
	require.NoError(t, err)

	_, err = e.Play(m)
	assert.ErrorIs(t, err, ErrIllegalMove)
	assert.Equal(t, board.StartingFEN, e.FEN())
}

func TestReset(t *testing.T) {
	e := newEngine(t)
	play(t, e, "f2f3", "e7e5", "g2g4", "d8h4")
	require.Equal(t, Checkmate, e.Phase())

	e.Reset()
	assert.Equal(t, board.StartingFEN, e.FEN())
	assert.Equal(t, AwaitingSelection, e.Phase())
	assert.Equal(t, core.ColorWhite, e.Active())

	custom := "4k3/P7/8/8/8/8/8/4K3 w - - 0 1"
	e = newEngine(t, FromFEN(custom))
	play(t, e, "e1d1")
	e.Reset()
	assert.Equal(t, custom, e.FEN())
}

func TestLegalMoves(t *testing.T) {
	e := newEngine(t)

	moves, err := e.LegalMoves(mustSquare(t, "b1"))
	require.NoError(t, err)
	var names []string
	for _, sq := range moves {
		names = append(names, sq.String())
	}
	assert.ElementsMatch(t, []string{"a3", "c3"}, names)

	moves, err = e.LegalMoves(mustSquare(t, "e4"))
	require.NoError(t, err)
	assert.Empty(t, moves)

	_, err = e.LegalMoves(board.NoSquare)
	assert.ErrorIs(t, err, board.ErrInvalidSquare)
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("e7e8q")
	require.NoError(t, err)
	assert.Equal(t, board.Queen, m.Promotion)
	assert.Equal(t, "e7e8q", m.String())

	_, err = ParseMove("e7e8k")
	assert.ErrorIs(t, err, ErrInvalidPromotionChoice)
	_, err = ParseMove("e2")
	assert.ErrorIs(t, err, ErrIllegalMove)
	_, err = ParseMove("z2e4")
	assert.ErrorIs(t, err, board.ErrInvalidSquare)
}
