package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"notes-service/models"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Options configures the session cookie.
type Options struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager binds opaque tokens to signed-in users. The client only ever holds
// the token, inside a cookie signed with the session secret; the record itself
// lives in the Store.
type Manager struct {
	store Store
	opts  Options
	now   func() time.Time
}

func NewManager(store Store, opts Options) (*Manager, error) {
	if opts.Secret == "" {
		return nil, errors.New("session secret is empty")
	}
	if opts.CookieName == "" {
		opts.CookieName = "session_id"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{store: store, opts: opts, now: time.Now}, nil
}

type cookieClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Start creates a session for user and sets the cookie. A session already
// attached to r is destroyed first so a login never reuses a token.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) error {
	if old, ok := m.token(r); ok {
		if err := m.store.Destroy(ctx, old); err != nil {
			return err
		}
	}

	token := uuid.New().String()
	now := m.now()
	if err := m.store.Set(ctx, token, Data{UserID: user.ID, Email: user.Email, CreatedAt: now.UTC()}, m.opts.TTL); err != nil {
		return err
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cookieClaims{
		SessionID: token,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.opts.TTL)),
		},
	}).SignedString([]byte(m.opts.Secret))
	if err != nil {
		return fmt.Errorf("failed to sign session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.opts.TTL / time.Second),
	})
	return nil
}

// Current returns the session attached to r, or nil when the request is
// anonymous, the cookie is forged or expired, or the record is gone.
// Only store failures are returned as errors.
func (m *Manager) Current(ctx context.Context, r *http.Request) (*Data, error) {
	token, ok := m.token(r)
	if !ok {
		return nil, nil
	}
	data, err := m.store.Get(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// UserID resolves the signed-in user. Zero means anonymous; no user has id zero,
// so owner-scoped queries made with it match nothing.
func (m *Manager) UserID(ctx context.Context, r *http.Request) (int64, error) {
	data, err := m.Current(ctx, r)
	if err != nil || data == nil {
		return 0, err
	}
	return data.UserID, nil
}

// Destroy removes the session record, if any, and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if token, ok := m.token(r); ok {
		if err := m.store.Destroy(ctx, token); err != nil {
			return err
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	return nil
}

// token extracts and verifies the session token from the request cookie.
func (m *Manager) token(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	tok, err := jwt.ParseWithClaims(cookie.Value, &cookieClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(m.opts.Secret), nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !tok.Valid {
		return "", false
	}
	c, _ := tok.Claims.(*cookieClaims)
	if c == nil || c.SessionID == "" {
		return "", false
	}
	return c.SessionID, true
}
