package service

import (
	"fmt"
	"log"
	"time"

	"chessarbiter/internal/core"
	"chessarbiter/internal/engine"
	"chessarbiter/internal/game"
	"chessarbiter/internal/server/archive"
	"chessarbiter/internal/server/storage"

	"github.com/google/uuid"
)

// GenerateGameID returns a fresh UUID for a new game
func (s *Service) GenerateGameID() string {
	return uuid.New().String()
}

// CreateGame starts a game from initialFEN (the standard layout when empty)
// and registers it. A non-empty ownerID restricts mutation to that user.
func (s *Service) CreateGame(initialFEN string, white, black *core.Player, ownerID string) (string, error) {
	g, err := game.New(initialFEN, white, black)
	if err != nil {
		return "", err
	}
	g.SetOwner(ownerID)

	s.mu.Lock()
	if len(s.games) >= MaxGames {
		s.mu.Unlock()
		return "", ErrTooManyGames
	}
	gameID := s.GenerateGameID()
	sess := &session{game: g, result: g.State().String()}

	// Queued before the game becomes reachable so its moves cannot overtake it
	if s.store != nil {
		record := storage.GameRecord{
			GameID:       gameID,
			InitialFEN:   g.InitialFEN(),
			WhiteName:    g.GetPlayer(core.ColorWhite).Name,
			BlackName:    g.GetPlayer(core.ColorBlack).Name,
			OwnerID:      ownerID,
			Result:       sess.result,
			StartTimeUTC: time.Now().UTC(),
		}
		if err := s.store.RecordNewGame(record); err != nil {
			log.Printf("Failed to record new game %s: %v", gameID, err)
		}
	}
	s.games[gameID] = sess
	s.mu.Unlock()

	// A FEN may already be mate
	if g.State().IsOver() {
		sess.mu.Lock()
		s.syncGame(gameID, sess)
		sess.mu.Unlock()
	}

	return gameID, nil
}

func (s *Service) lookup(gameID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return sess, nil
}

// Do runs fn with exclusive access to the game, then persists whatever fn
// changed and wakes long-polling clients. fn's error is returned unchanged.
func (s *Service) Do(gameID, userID string, fn func(*game.Game) error) error {
	sess, err := s.lookup(gameID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if owner := sess.game.OwnerID(); owner != "" && owner != userID {
		return ErrForbidden
	}

	err = fn(sess.game)
	s.syncGame(gameID, sess)
	return err
}

// View runs fn with exclusive access to the game without persisting anything.
// Reads are open to everyone who knows the game ID.
func (s *Service) View(gameID string, fn func(*game.Game) error) error {
	sess, err := s.lookup(gameID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.game)
}

// DeleteGame removes a game from memory and storage
func (s *Service) DeleteGame(gameID, userID string) error {
	sess, err := s.lookup(gameID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	owner := sess.game.OwnerID()
	sess.mu.Unlock()
	if owner != "" && owner != userID {
		return ErrForbidden
	}

	s.mu.Lock()
	delete(s.games, gameID)
	s.mu.Unlock()

	s.waiter.RemoveGame(gameID)

	if s.store != nil {
		if err := s.store.DeleteGame(gameID); err != nil {
			log.Printf("Failed to delete game %s from storage: %v", gameID, err)
		}
	}
	return nil
}

// GetArchived returns the archived PGN entry of a finished game
func (s *Service) GetArchived(gameID string) (*archive.Entry, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.Get(gameID)
}

// ListArchived returns every archived game
func (s *Service) ListArchived() ([]archive.Entry, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.List()
}

// syncGame brings storage, archive and waiters in line with the game. Callers
// hold sess.mu.
func (s *Service) syncGame(gameID string, sess *session) {
	g := sess.game
	moves := g.Moves()

	if s.store != nil {
		s.recordMoves(gameID, sess, moves)
	}
	sess.recorded = moves

	state := g.State()
	if result := state.String(); result != sess.result {
		sess.result = result
		if s.store != nil {
			if err := s.store.UpdateGameResult(gameID, result); err != nil {
				log.Printf("Failed to update result of game %s: %v", gameID, err)
			}
		}
	}

	switch {
	case state.IsOver() && !sess.archived:
		s.submitArchive(gameID, g, len(moves))
		sess.archived = true
	case !state.IsOver():
		// Undo out of mate; a later mate replaces the archived entry
		sess.archived = false
	}

	s.waiter.NotifyGame(gameID, len(moves))
}

// recordMoves writes the difference between what storage holds and moves
func (s *Service) recordMoves(gameID string, sess *session, moves []string) {
	common := 0
	for common < len(sess.recorded) && common < len(moves) && sess.recorded[common] == moves[common] {
		common++
	}

	if common < len(sess.recorded) {
		if err := s.store.DeleteUndoneMoves(gameID, common); err != nil {
			log.Printf("Failed to delete undone moves of game %s: %v", gameID, err)
		}
	}
	if common == len(moves) {
		return
	}

	history := sess.game.History()
	last := sess.game.LastResult()
	now := time.Now().UTC()

	for i := common; i < len(moves); i++ {
		snap := history[i+1]
		record := storage.MoveRecord{
			GameID:       gameID,
			MoveNumber:   i + 1,
			MoveUCI:      moves[i],
			FENAfterMove: snap.FEN,
			PlayerColor:  history[i].NextTurnColor.String(),
			Check:        engine.CheckNone.String(),
			MoveTimeUTC:  now,
		}
		if i == len(moves)-1 && last != nil && last.Outcome == engine.Applied {
			if last.Captured != 0 {
				record.Captured = string(last.Captured.Letter())
			}
			record.Check = last.Status.State.String()
		}
		if err := s.store.RecordMove(record); err != nil {
			log.Printf("Failed to record move %s of game %s: %v", moves[i], gameID, err)
		}
	}
}

func (s *Service) submitArchive(gameID string, g *game.Game, moves int) {
	if s.archiver == nil {
		return
	}

	pgn, err := g.PGN()
	if err != nil {
		log.Printf("Failed to export PGN of game %s: %v", gameID, err)
		return
	}

	entry := archive.Entry{
		GameID:     gameID,
		White:      g.GetPlayer(core.ColorWhite).Name,
		Black:      g.GetPlayer(core.ColorBlack).Name,
		Result:     g.State().String(),
		Moves:      moves,
		PGN:        pgn,
		ArchivedAt: time.Now().UTC(),
	}
	if err := s.archiver.Submit(ArchiveTask{Entry: entry}); err != nil {
		log.Printf("Failed to queue archive of game %s: %v", gameID, err)
	}
}
