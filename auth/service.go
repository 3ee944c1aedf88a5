package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"notes-service/models"
)

// UserStore is the credential storage the auth service needs.
type UserStore interface {
	Create(ctx context.Context, email, digest string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service implements signup and credential checks. Session handling lives in
// the session package; Service never touches it.
type Service struct {
	users  UserStore
	hasher Hasher
	// dummy is compared against when the email is unknown so both failure
	// paths cost one bcrypt compare.
	dummy string
}

func NewService(users UserStore, hasher Hasher) (*Service, error) {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, err
	}
	return &Service{users: users, hasher: hasher, dummy: dummy}, nil
}

// Signup registers a new user. A taken email fails with models.ErrConflict.
func (s *Service) Signup(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", models.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("email %q is malformed: %w", email, models.ErrValidation)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return s.users.Create(ctx, email, digest)
}

// Login returns the user for a matching email and password. Unknown email and
// wrong password both yield models.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		s.hasher.Verify(password, s.dummy)
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(password, user.Password) {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
