package storage

import (
	"database/sql"

	"github.com/pkg/errors"
)

// RecordNewGame asynchronously records a new game
func (s *Store) RecordNewGame(record GameRecord) error {
	return s.enqueue("game record", func(tx *sql.Tx) error {
		query := `INSERT INTO games (
			game_id, initial_fen, white_name, black_name, owner_id, result, start_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.InitialFEN,
			record.WhiteName, record.BlackName, record.OwnerID,
			record.Result, record.StartTimeUTC,
		)
		return errors.Wrapf(err, "insert game %s", record.GameID)
	})
}

// RecordMove asynchronously records a move
func (s *Store) RecordMove(record MoveRecord) error {
	return s.enqueue("move record", func(tx *sql.Tx) error {
		query := `INSERT INTO moves (
			game_id, move_number, move_uci, fen_after_move, player_color, captured, check_state, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.MoveNumber, record.MoveUCI,
			record.FENAfterMove, record.PlayerColor, record.Captured,
			record.Check, record.MoveTimeUTC,
		)
		return errors.Wrapf(err, "insert move %d of %s", record.MoveNumber, record.GameID)
	})
}

// UpdateGameResult asynchronously sets the result column
func (s *Store) UpdateGameResult(gameID, result string) error {
	return s.enqueue("result update", func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE games SET result = ? WHERE game_id = ?`, result, gameID)
		return errors.Wrapf(err, "update result of %s", gameID)
	})
}

// DeleteUndoneMoves asynchronously deletes moves after undo or reset
func (s *Store) DeleteUndoneMoves(gameID string, afterMoveNumber int) error {
	return s.enqueue("undo operation", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM moves WHERE game_id = ? AND move_number > ?`, gameID, afterMoveNumber)
		return errors.Wrapf(err, "delete moves of %s", gameID)
	})
}

// DeleteGame asynchronously removes a game and, by cascade, its moves
func (s *Store) DeleteGame(gameID string) error {
	return s.enqueue("game deletion", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM games WHERE game_id = ?`, gameID)
		return errors.Wrapf(err, "delete game %s", gameID)
	})
}

// QueryGames retrieves games with optional filtering; "" or "*" match everything
func (s *Store) QueryGames(gameID, ownerID string) ([]GameRecord, error) {
	query := `SELECT
		game_id, initial_fen, white_name, black_name, owner_id, result, start_time_utc
	FROM games WHERE 1=1`

	var args []interface{}

	if gameID != "" && gameID != "*" {
		query += " AND game_id = ?"
		args = append(args, gameID)
	}

	if ownerID != "" && ownerID != "*" {
		query += " AND owner_id = ?"
		args = append(args, ownerID)
	}

	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query failed")
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		err := rows.Scan(
			&g.GameID, &g.InitialFEN, &g.WhiteName, &g.BlackName,
			&g.OwnerID, &g.Result, &g.StartTimeUTC,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan failed")
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows iteration failed")
	}

	return games, nil
}

// GetMoves returns the recorded moves of a game in order
func (s *Store) GetMoves(gameID string) ([]MoveRecord, error) {
	rows, err := s.db.Query(`SELECT
		move_id, game_id, move_number, move_uci, fen_after_move, player_color, captured, check_state, move_time_utc
	FROM moves WHERE game_id = ? ORDER BY move_number`, gameID)
	if err != nil {
		return nil, errors.Wrap(err, "query failed")
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(
			&m.MoveID, &m.GameID, &m.MoveNumber, &m.MoveUCI, &m.FENAfterMove,
			&m.PlayerColor, &m.Captured, &m.Check, &m.MoveTimeUTC,
		); err != nil {
			return nil, errors.Wrap(err, "scan failed")
		}
		moves = append(moves, m)
	}
	return moves, errors.Wrap(rows.Err(), "rows iteration failed")
}
