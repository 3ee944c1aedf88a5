package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"notes-service/models"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

const queryTimeout = 3 * time.Second

// psql builds statements with '?' placeholders for SQLite.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// UserStore persists user credentials. Email is unique at the schema level.
type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a user with an already hashed password.
// A second user with the same email fails with models.ErrConflict and leaves the first untouched.
func (s *UserStore) Create(ctx context.Context, email, digest string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `INSERT INTO users (email, password) VALUES (?, ?)`, email, digest)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email %q: %w", email, models.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}
	return &models.User{ID: id, Email: email, Password: digest}, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT id, email, password FROM users WHERE email = ?`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

// List returns every user in insertion order. There is no pagination.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	users := []models.User{}
	if err := s.db.SelectContext(ctx, &users, `SELECT id, email, password FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
