// Package archive keeps the PGN of finished games in a BadgerDB directory
package archive

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

const keyPrefix = "game/"

var ErrNotFound = errors.New("game not archived")

// Entry is one finished game
type Entry struct {
	GameID     string    `json:"game_id"`
	White      string    `json:"white"`
	Black      string    `json:"black"`
	Result     string    `json:"result"`
	Moves      int       `json:"moves"`
	PGN        string    `json:"pgn"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Archive wraps BadgerDB for finished game storage
type Archive struct {
	db *badger.DB
}

// Open opens or creates the archive in dir. An empty dir keeps everything in memory.
func Open(dir string) (*Archive, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open archive %q", dir)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func key(gameID string) []byte {
	return []byte(keyPrefix + gameID)
}

// Put stores or replaces the entry for e.GameID
func (a *Archive) Put(e Entry) error {
	if e.GameID == "" {
		return errors.New("archive entry without game id")
	}
	if e.ArchivedAt.IsZero() {
		e.ArchivedAt = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "encode entry")
	}

	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(e.GameID), data)
	})
	return errors.Wrapf(err, "archive %s", e.GameID)
}

func (a *Archive) Get(gameID string) (*Entry, error) {
	var e Entry
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(gameID))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", gameID)
	}
	return &e, nil
}

// List returns every archived entry in key order
func (a *Archive) List() ([]Entry, error) {
	var entries []Entry
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var e Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	return entries, errors.Wrap(err, "list archive")
}

func (a *Archive) Delete(gameID string) error {
	err := a.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(gameID))
	})
	return errors.Wrapf(err, "delete %s", gameID)
}
