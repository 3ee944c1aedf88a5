package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notes-service/models"
	"notes-service/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestStores_SetGetDestroy(t *testing.T) {
	redisStore, _ := newRedisStore(t)
	stores := map[string]Store{
		"sql":   NewSQLStore(testutil.OpenInMemoryDB(t, t.Name())),
		"redis": redisStore,
	}

	for name, st := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := st.Get(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, st.Set(ctx, "tok", Data{UserID: 7, Email: "a@x.com"}, time.Hour))
			got, err := st.Get(ctx, "tok")
			require.NoError(t, err)
			assert.Equal(t, int64(7), got.UserID)
			assert.Equal(t, "a@x.com", got.Email)

			require.NoError(t, st.Set(ctx, "tok", Data{UserID: 8}, time.Hour))
			got, err = st.Get(ctx, "tok")
			require.NoError(t, err)
			assert.Equal(t, int64(8), got.UserID)

			require.NoError(t, st.Destroy(ctx, "tok"))
			_, err = st.Get(ctx, "tok")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, st.Destroy(ctx, "tok"), "destroying twice is fine")
		})
	}
}

func TestSQLStore_Expiry(t *testing.T) {
	st := NewSQLStore(testutil.OpenInMemoryDB(t, t.Name()))
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "short", Data{UserID: 1}, time.Minute))
	require.NoError(t, st.Set(ctx, "long", Data{UserID: 2}, time.Hour))

	now = now.Add(2 * time.Minute)
	_, err := st.Get(ctx, "short")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Set(ctx, "short2", Data{UserID: 3}, time.Minute))
	now = now.Add(2 * time.Minute)
	n, err := st.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := st.Get(ctx, "long")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.UserID)
}

func TestRedisStore_Expiry(t *testing.T) {
	st, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "tok", Data{UserID: 1}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := st.Get(ctx, "tok")
	require.ErrorIs(t, err, ErrNotFound)
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(NewSQLStore(testutil.OpenInMemoryDB(t, t.Name())), Options{Secret: "s3cret", TTL: time.Hour})
	require.NoError(t, err)
	return m
}

func withCookies(r *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestManager_Lifecycle(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	data, err := m.Current(ctx, anon)
	require.NoError(t, err)
	assert.Nil(t, data)

	login := httptest.NewRecorder()
	require.NoError(t, m.Start(ctx, login, anon, &models.User{ID: 42, Email: "a@x.com"}))
	cookies := login.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_id", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	authed := withCookies(httptest.NewRequest(http.MethodGet, "/", nil), login)
	uid, err := m.UserID(ctx, authed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), uid)

	logout := httptest.NewRecorder()
	require.NoError(t, m.Destroy(ctx, logout, authed))
	cleared := logout.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	uid, err = m.UserID(ctx, authed)
	require.NoError(t, err)
	assert.Zero(t, uid, "old cookie no longer resolves after logout")
}

func TestManager_RejectsForgedCookie(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	login := httptest.NewRecorder()
	require.NoError(t, m.Start(ctx, login, httptest.NewRequest(http.MethodGet, "/", nil), &models.User{ID: 1}))

	other, err := NewManager(m.store, Options{Secret: "different", TTL: time.Hour})
	require.NoError(t, err)
	uid, err := other.UserID(ctx, withCookies(httptest.NewRequest(http.MethodGet, "/", nil), login))
	require.NoError(t, err)
	assert.Zero(t, uid)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session_id", Value: "garbage"})
	uid, err = m.UserID(ctx, r)
	require.NoError(t, err)
	assert.Zero(t, uid)
}

func TestManager_LoginReplacesPreviousSession(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	first := httptest.NewRecorder()
	require.NoError(t, m.Start(ctx, first, httptest.NewRequest(http.MethodGet, "/", nil), &models.User{ID: 1}))
	firstReq := withCookies(httptest.NewRequest(http.MethodGet, "/", nil), first)

	second := httptest.NewRecorder()
	require.NoError(t, m.Start(ctx, second, firstReq, &models.User{ID: 2}))

	uid, err := m.UserID(ctx, firstReq)
	require.NoError(t, err)
	assert.Zero(t, uid, "previous token was destroyed")

	uid, err = m.UserID(ctx, withCookies(httptest.NewRequest(http.MethodGet, "/", nil), second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), uid)
}

func TestManager_ExpiredCookie(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	now := time.Now()
	m.now = func() time.Time { return now }

	login := httptest.NewRecorder()
	require.NoError(t, m.Start(ctx, login, httptest.NewRequest(http.MethodGet, "/", nil), &models.User{ID: 1}))

	now = now.Add(2 * time.Hour)
	uid, err := m.UserID(ctx, withCookies(httptest.NewRequest(http.MethodGet, "/", nil), login))
	require.NoError(t, err)
	assert.Zero(t, uid)
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager(nil, Options{})
	require.Error(t, err)
}
