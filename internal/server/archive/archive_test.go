package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveRoundTrip(t *testing.T) {
	a, err := Open("")
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Put(Entry{GameID: "b", White: "Alice", Black: "Bob", Result: "black wins", Moves: 4, PGN: "1. f3 e5 2. g4 Qh4# 0-1"}))
	require.NoError(t, a.Put(Entry{GameID: "a", Result: "white wins", PGN: "1. e4"}))

	e, err := a.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "Alice", e.White)
	assert.Equal(t, 4, e.Moves)
	assert.False(t, e.ArchivedAt.IsZero())

	entries, err := a.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].GameID)

	require.NoError(t, a.Delete("a"))
	_, err = a.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, a.Put(Entry{}))
}

func TestArchivePersistsOnDisk(t *testing.T) {
	dir := t.TempDir()

	a, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, a.Put(Entry{GameID: "g1", PGN: "pgn"}))
	require.NoError(t, a.Close())

	a, err = Open(dir)
	require.NoError(t, err)
	defer a.Close()

	e, err := a.Get("g1")
	require.NoError(t, err)
	assert.Equal(t, "pgn", e.PGN)
}
