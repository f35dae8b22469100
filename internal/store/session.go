package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dukerupert/fusionmeals/internal/model"
)

// SessionTTL is how long a browser session stays valid.
const SessionTTL = 24 * time.Hour

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func scanSession(scanner interface{ Scan(...any) error }) (*model.Session, error) {
	var s model.Session
	var amazonToken, amazonRefresh sql.NullString
	var amazonExpires sql.NullTime
	err := scanner.Scan(&s.ID, &s.Token, &s.UserID, &amazonToken, &amazonRefresh, &amazonExpires, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.AmazonToken = amazonToken.String
	s.AmazonRefreshToken = amazonRefresh.String
	if amazonExpires.Valid {
		s.AmazonExpiresAt = &amazonExpires.Time
	}
	return &s, nil
}

const sessionCols = `id, token, user_id, amazon_token, amazon_refresh_token, amazon_expires_at, expires_at, created_at`

// Create generates a new session with a crypto-random token.
func (s *SessionStore) Create(userID string) (*model.Session, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)
	now := time.Now().UTC()

	result, err := s.db.Exec(
		`INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		token, userID, now.Add(SessionTTL), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// GetByToken returns the session for the given token, or nil if expired or not found.
func (s *SessionStore) GetByToken(token string) (*model.Session, error) {
	row := s.db.QueryRow(
		`SELECT `+sessionCols+` FROM sessions WHERE token = ? AND expires_at > ?`,
		token, time.Now().UTC(),
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	return sess, nil
}

// SetAmazonTokens stores the Amazon OAuth tokens on the session.
func (s *SessionStore) SetAmazonTokens(id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	var exp *time.Time
	if !expiresAt.IsZero() {
		u := expiresAt.UTC()
		exp = &u
	}
	_, err := s.db.Exec(
		`UPDATE sessions SET amazon_token = ?, amazon_refresh_token = ?, amazon_expires_at = ? WHERE id = ?`,
		accessToken, refreshToken, exp, id,
	)
	if err != nil {
		return fmt.Errorf("set amazon tokens: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
