package engine

import (
	"fmt"

	"chessarbiter/internal/board"
)

// ChoosePromotion replaces the pending pawn with kind and completes the turn
func (e *Engine) ChoosePromotion(kind board.Kind) (MoveResult, error) {
	if e.phase != PromotionPending || e.pending == nil {
		return MoveResult{}, fmt.Errorf("%w: no promotion pending", ErrInvalidPromotionChoice)
	}
	if !kind.Promotable() {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrInvalidPromotionChoice, kind)
	}

	if _, err := e.pos.Promote(e.pending, kind); err != nil {
		return MoveResult{}, fmt.Errorf("%w: %v", ErrInvalidPromotionChoice, err)
	}

	res := e.result
	res.Outcome = Applied
	res.Promotion = kind
	res.Move.Promotion = kind
	return e.endTurn(res), nil
}

// Play applies a UCI move in one step, resolving promotion from its suffix.
// A promotion move without suffix stops in PromotionPending.
func (e *Engine) Play(m Move) (MoveResult, error) {
	if err := e.ready(); err != nil {
		return MoveResult{}, err
	}
	if m.Promotion != 0 && !m.Promotion.Promotable() {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrInvalidPromotionChoice, m.Promotion)
	}
	if m.Promotion != 0 {
		pc := e.pos.At(m.From)
		if pc == nil || pc.Kind() != board.Pawn || m.To.Y() != promotionRank(pc) {
			return MoveResult{}, fmt.Errorf("%w: %s is not a promotion", ErrIllegalMove, m)
		}
	}

	res, err := e.AttemptMove(m.From, m.To)
	if err != nil || res.Outcome != PromotionRequired || m.Promotion == 0 {
		return res, err
	}
	return e.ChoosePromotion(m.Promotion)
}

func promotionRank(pc *board.Piece) int {
	if pc.Owner().Direction() > 0 {
		return board.Size - 1
	}
	return 0
}
