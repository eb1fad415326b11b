package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "chess.db"), false)
	require.NoError(t, err)
	require.NoError(t, s.InitDB())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGameAndMoveRecords(t *testing.T) {
	s := newTestStore(t)
	start := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.RecordNewGame(GameRecord{
		GameID:       "g1",
		InitialFEN:   "start",
		WhiteName:    "Alice",
		BlackName:    "Bob",
		Result:       "ongoing",
		StartTimeUTC: start,
	}))
	for i, uci := range []string{"e2e4", "e7e5", "g1f3"} {
		color := "w"
		if i%2 == 1 {
			color = "b"
		}
		require.NoError(t, s.RecordMove(MoveRecord{
			GameID:       "g1",
			MoveNumber:   i + 1,
			MoveUCI:      uci,
			FENAfterMove: "fen",
			PlayerColor:  color,
			Check:        "none",
			MoveTimeUTC:  start,
		}))
	}
	require.NoError(t, s.DeleteUndoneMoves("g1", 2))
	require.NoError(t, s.UpdateGameResult("g1", "white wins"))
	require.NoError(t, s.Flush(time.Second))

	games, err := s.QueryGames("g1", "")
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Alice", games[0].WhiteName)
	assert.Equal(t, "white wins", games[0].Result)

	moves, err := s.GetMoves("g1")
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, "e2e4", moves[0].MoveUCI)
	assert.Equal(t, "b", moves[1].PlayerColor)

	require.NoError(t, s.DeleteGame("g1"))
	require.NoError(t, s.Flush(time.Second))

	games, err = s.QueryGames("*", "*")
	require.NoError(t, err)
	assert.Empty(t, games)
	moves, err = s.GetMoves("g1")
	require.NoError(t, err)
	assert.Empty(t, moves, "moves cascade with their game")
	assert.True(t, s.IsHealthy())
}

func TestFailedWriteDegradesStore(t *testing.T) {
	s := newTestStore(t)

	// Unknown game violates the foreign key
	require.NoError(t, s.RecordMove(MoveRecord{GameID: "missing", MoveNumber: 1, MoveUCI: "e2e4", PlayerColor: "w"}))
	assert.Error(t, s.Flush(time.Second))
	assert.False(t, s.IsHealthy())

	// Degraded stores drop writes silently
	assert.NoError(t, s.RecordNewGame(GameRecord{GameID: "g2"}))
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	require.NoError(t, s.CreateUser(UserRecord{
		UserID: "u1", Username: "Alice", Email: "alice@example.com",
		PasswordHash: "hash", AccountType: "permanent", CreatedAt: now,
	}))
	require.NoError(t, s.CreateUser(UserRecord{
		UserID: "u2", Username: "temp", PasswordHash: "hash", CreatedAt: now, ExpiresAt: &past,
	}))

	err := s.CreateUser(UserRecord{UserID: "u3", Username: "alice", PasswordHash: "hash", CreatedAt: now})
	assert.ErrorIs(t, err, ErrUserExists)

	u, err := s.GetUserByUsername("ALICE")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)

	u, err = s.GetUserByEmail("Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Username)

	_, err = s.GetUserByID("nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, s.UpdateUserLastLoginSync("u1", now))
	u, err = s.GetUserByID("u1")
	require.NoError(t, err)
	require.NotNil(t, u.LastLoginAt)

	deleted, err := s.DeleteExpiredTempUsers()
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	users, err := s.GetAllUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "permanent", users[0].AccountType)

	require.NoError(t, s.DeleteUserByID("u1"))
	users, err = s.GetAllUsers()
	require.NoError(t, err)
	assert.Empty(t, users)
}
