package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/fusionmeals/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, username, email, hashed_password, created_at`

// Create inserts a user with a bcrypt-hashed password. An empty password
// stores an empty hash, which never authenticates.
func (s *UserStore) Create(username, email, password string) (*model.User, error) {
	var hashed string
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hashed = string(b)
	}
	return s.insert(uuid.NewString(), username, email, hashed)
}

// CreateGuest inserts an anonymous user for a fresh browser session.
func (s *UserStore) CreateGuest() (*model.User, error) {
	id := uuid.NewString()
	name := placeholderName(id)
	return s.insert(id, name, name+"@example.com", "")
}

// Ensure returns the user with the given id, creating a placeholder row
// when it does not exist yet.
func (s *UserStore) Ensure(id string) (*model.User, error) {
	name := placeholderName(id)
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO users (id, username, email) VALUES (?, ?, ?)`,
		id, name, name+"@example.com",
	)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return s.GetByID(id)
}

func placeholderName(id string) string {
	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return "user_" + short
}

func (s *UserStore) insert(id, username, email, hashed string) (*model.User, error) {
	_, err := s.db.Exec(
		`INSERT INTO users (id, username, email, hashed_password) VALUES (?, ?, ?, ?)`,
		id, username, email, hashed,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// Authenticate returns the user when the password matches, or nil otherwise.
func (s *UserStore) Authenticate(username, password string) (*model.User, error) {
	u, err := s.GetByUsername(username)
	if err != nil || u == nil {
		return nil, err
	}
	if u.HashedPassword == "" {
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return nil, nil
	}
	return u, nil
}

func (s *UserStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
