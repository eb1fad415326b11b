package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"chessarbiter/internal/game"
	"chessarbiter/internal/server/archive"
	"chessarbiter/internal/server/storage"

	"github.com/hashicorp/go-multierror"
)

const (
	TempUserTTL        = 24 * time.Hour
	TokenTTL           = 7 * 24 * time.Hour
	GameIdleTTL        = 24 * time.Hour
	CleanupJobInterval = 1 * time.Hour
	MaxGames           = 1000
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrForbidden       = errors.New("game belongs to another user")
	ErrTooManyGames    = errors.New("game limit reached")
	ErrStorageDisabled = errors.New("storage disabled")
	ErrArchiveDisabled = errors.New("archive disabled")
)

// session guards one game; every engine call on it happens under mu
type session struct {
	mu       sync.Mutex
	game     *game.Game
	recorded []string // UCI moves already handed to storage
	result   string
	archived bool
}

// Service coordinates game sessions, user management, and storage
type Service struct {
	games     map[string]*session
	mu        sync.RWMutex
	store     *storage.Store
	archive   *archive.Archive
	archiver  *ArchiveQueue
	jwtSecret []byte
	waiter    *WaitRegistry
}

// New creates a new service instance; store and arc are both optional
func New(store *storage.Store, arc *archive.Archive, jwtSecret []byte) *Service {
	s := &Service{
		games:     make(map[string]*session),
		store:     store,
		archive:   arc,
		jwtSecret: jwtSecret,
		waiter:    NewWaitRegistry(),
	}
	if arc != nil {
		s.archiver = NewArchiveQueue(arc, 2)
	}
	return s
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// GetArchiveHealth returns the archive component status
func (s *Service) GetArchiveHealth() string {
	if s.archive == nil {
		return "disabled"
	}
	return "ok"
}

// GameCount returns the number of games held in memory
func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// RegisterWait registers a client to wait for game state changes
func (s *Service) RegisterWait(ctx context.Context, gameID string, moveCount int) <-chan struct{} {
	return s.waiter.RegisterWait(ctx, gameID, moveCount)
}

// Shutdown gracefully shuts down the service
func (s *Service) Shutdown(timeout time.Duration) error {
	var result *multierror.Error

	if err := s.waiter.Shutdown(timeout); err != nil {
		result = multierror.Append(result, fmt.Errorf("wait registry: %w", err))
	}

	if s.archiver != nil {
		if err := s.archiver.Shutdown(timeout); err != nil {
			result = multierror.Append(result, fmt.Errorf("archive queue: %w", err))
		}
	}

	s.mu.Lock()
	s.games = make(map[string]*session)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("storage: %w", err))
		}
	}

	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("archive: %w", err))
		}
	}

	return result.ErrorOrNil()
}

// RunCleanupJob runs periodic cleanup of expired users and idle games
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupExpired(time.Now())
		}
	}
}

func (s *Service) cleanupExpired(now time.Time) {
	if evicted := s.evictIdleGames(now.Add(-GameIdleTTL)); evicted > 0 {
		log.Printf("cleanup: evicted %d idle games", evicted)
	}

	if s.store == nil {
		return
	}

	if deleted, err := s.store.DeleteExpiredTempUsers(); err != nil {
		log.Printf("cleanup: failed to delete expired users: %v", err)
	} else if deleted > 0 {
		log.Printf("cleanup: deleted %d expired temp users", deleted)
	}
}

// evictIdleGames drops games untouched since cutoff from memory. Recorded
// games stay in storage.
func (s *Service) evictIdleGames(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.games {
		sess.mu.Lock()
		idle := sess.game.UpdatedAt().Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.games, id)
			s.waiter.RemoveGame(id)
			evicted++
		}
	}
	return evicted
}
