package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"chessarbiter/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// User represents a registered user account
type User struct {
	UserID    string
	Username  string
	Email     string
	CreatedAt time.Time
}

func userFromRecord(r *storage.UserRecord) *User {
	return &User{
		UserID:    r.UserID,
		Username:  r.Username,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
	}
}

// CreateUser creates a temporary account that expires after TempUserTTL
// unless promoted through the db CLI
func (s *Service) CreateUser(username, email, password string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.generateUniqueUserID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate unique ID: %w", err)
	}

	now := time.Now().UTC()
	expires := now.Add(TempUserTTL)
	record := storage.UserRecord{
		UserID:       userID,
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		AccountType:  "temp",
		CreatedAt:    now,
		ExpiresAt:    &expires,
	}

	if err = s.store.CreateUser(record); err != nil {
		return nil, err
	}

	return userFromRecord(&record), nil
}

// AuthenticateUser verifies user credentials; identifier is a username or an email
func (s *Service) AuthenticateUser(identifier, password string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	var userRecord *storage.UserRecord
	var err error

	if strings.Contains(identifier, "@") {
		userRecord, err = s.store.GetUserByEmail(identifier)
	} else {
		userRecord, err = s.store.GetUserByUsername(identifier)
	}

	if err != nil {
		// Same cost as a real verification
		auth.HashPassword(password)
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(password, userRecord.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return userFromRecord(userRecord), nil
}

// UpdateLastLogin updates the last login timestamp for a user
func (s *Service) UpdateLastLogin(userID string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}

	err := s.store.UpdateUserLastLoginSync(userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update last login time for user %s: %w", userID, err)
	}

	return nil
}

// GetUserByID retrieves user information by user ID
func (s *Service) GetUserByID(userID string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	userRecord, err := s.store.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	return userFromRecord(userRecord), nil
}

// GenerateUserToken creates a JWT token for the specified user
func (s *Service) GenerateUserToken(userID string) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}

	claims := map[string]any{
		"username": user.Username,
		"email":    user.Email,
	}

	return auth.GenerateHS256Token(s.jwtSecret, userID, claims, TokenTTL)
}

// ValidateToken verifies JWT token and returns user ID with claims
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	return auth.ValidateHS256Token(s.jwtSecret, token)
}

// generateUniqueUserID creates a unique user ID with collision detection
func (s *Service) generateUniqueUserID() (string, error) {
	const maxAttempts = 10

	for i := 0; i < maxAttempts; i++ {
		id := uuid.New().String()
		if _, err := s.store.GetUserByID(id); errors.Is(err, storage.ErrUserNotFound) {
			return id, nil
		} else if err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("failed to generate unique ID after %d attempts", maxAttempts)
}
