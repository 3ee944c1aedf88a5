package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for unknown and expired tokens alike.
var ErrNotFound = errors.New("session not found")

// Data is the server-side record bound to a session token.
type Data struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Store keeps session records outside the process so they survive restarts
// and are shared between instances.
type Store interface {
	Get(ctx context.Context, token string) (*Data, error)
	Set(ctx context.Context, token string, data Data, ttl time.Duration) error
	Destroy(ctx context.Context, token string) error
}
