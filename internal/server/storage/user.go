package storage

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrUserExists   = errors.New("username or email already exists")
	ErrUserNotFound = errors.New("user not found")
)

const userColumns = `user_id, username, email, password_hash, account_type, created_at, expires_at, last_login_at`

// DeleteExpiredTempUsers removes temporary users past their expiry
func (s *Store) DeleteExpiredTempUsers() (int64, error) {
	query := `DELETE FROM users WHERE account_type = 'temp' AND expires_at < ?`
	result, err := s.db.Exec(query, time.Now().UTC())
	if err != nil {
		return 0, errors.Wrap(err, "delete expired users")
	}
	return result.RowsAffected()
}

// CreateUser creates user with transaction isolation to prevent race conditions
func (s *Store) CreateUser(record UserRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	exists, err := s.userExists(tx, record.Username, record.Email)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserExists
	}

	if record.AccountType == "" {
		record.AccountType = "temp"
	}

	query := `INSERT INTO users (
		user_id, username, email, password_hash, account_type, created_at, expires_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.Exec(query,
		record.UserID, record.Username, record.Email,
		record.PasswordHash, record.AccountType, record.CreatedAt, record.ExpiresAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert user %s", record.Username)
	}

	return tx.Commit()
}

// DeleteUserByID removes a user by ID
func (s *Store) DeleteUserByID(userID string) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE user_id = ?`, userID)
	return errors.Wrapf(err, "delete user %s", userID)
}

// userExists verifies username/email uniqueness within a transaction
func (s *Store) userExists(tx *sql.Tx, username, email string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE`
	args := []any{username}

	if email != "" {
		query = `SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE OR email = ? COLLATE NOCASE`
		args = append(args, email)
	}

	if err := tx.QueryRow(query, args...).Scan(&count); err != nil {
		return false, errors.Wrap(err, "check user uniqueness")
	}
	return count > 0, nil
}

// GetAllUsers retrieves all users
func (s *Store) GetAllUsers() ([]UserRecord, error) {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "query users")
	}
	defer rows.Close()

	var users []UserRecord
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	return users, rows.Err()
}

// UpdateUserLastLoginSync updates user last login time
func (s *Store) UpdateUserLastLoginSync(userID string, loginTime time.Time) error {
	_, err := s.db.Exec(`UPDATE users SET last_login_at = ? WHERE user_id = ?`, loginTime, userID)
	return errors.Wrapf(err, "failed to update last login for user %s", userID)
}

// GetUserByUsername retrieves user by username with case-insensitive matching
func (s *Store) GetUserByUsername(username string) (*UserRecord, error) {
	return s.getUser(`username = ? COLLATE NOCASE`, username)
}

// GetUserByEmail retrieves user by email with case-insensitive matching
func (s *Store) GetUserByEmail(email string) (*UserRecord, error) {
	return s.getUser(`email = ? COLLATE NOCASE`, email)
}

// GetUserByID retrieves user by unique user ID
func (s *Store) GetUserByID(userID string) (*UserRecord, error) {
	return s.getUser(`user_id = ?`, userID)
}

func (s *Store) getUser(where string, arg any) (*UserRecord, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE `+where, arg)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return user, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*UserRecord, error) {
	var user UserRecord
	err := row.Scan(
		&user.UserID, &user.Username, &user.Email,
		&user.PasswordHash, &user.AccountType, &user.CreatedAt,
		&user.ExpiresAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "scan user")
	}
	return &user, nil
}
