package service

import (
	"context"
	"os"
	"testing"
	"time"

	"notes-service/events"
	"notes-service/models"
	"notes-service/store"
	"notes-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umakantv/go-utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.LoggerConfig{CallerKey: "file", TimeKey: "timestamp", CallerSkip: 1})
	os.Exit(m.Run())
}

type recordingPublisher struct {
	events []events.NoteShared
	err    error
}

func (p *recordingPublisher) PublishNoteShared(_ context.Context, evt events.NoteShared) error {
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	notes     *NotesService
	search    *SearchService
	publisher *recordingPublisher
	alice     int64
	bob       int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, t.Name())
	users := store.NewUserStore(d)
	noteStore := store.NewNoteStore(d)

	ctx := context.Background()
	alice, err := users.Create(ctx, "alice@x.com", "d")
	require.NoError(t, err)
	bob, err := users.Create(ctx, "bob@x.com", "d")
	require.NoError(t, err)

	pub := &recordingPublisher{}
	return &fixture{
		notes:     NewNotesService(noteStore, pub),
		search:    NewSearchService(noteStore),
		publisher: pub,
		alice:     alice.ID,
		bob:       bob.ID,
	}
}

func TestNotes_CreateGetRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.notes.Create(ctx, f.alice, "T", "C")
	require.NoError(t, err)
	assert.Equal(t, f.alice, n.Owner)
	assert.Equal(t, []int64{}, n.SharedWith)
	assert.True(t, n.CreatedAt.Equal(n.UpdatedAt))

	got, err := f.notes.Get(ctx, f.alice, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "C", got.Content)
}

func TestNotes_UpdateMovesUpdatedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	f.notes.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}

	n, err := f.notes.Create(ctx, f.alice, "T", "C")
	require.NoError(t, err)

	title, content := "T2", "C2"
	_, err = f.notes.Update(ctx, f.alice, n.ID, &title, &content)
	require.NoError(t, err)

	got, err := f.notes.Get(ctx, f.alice, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "T2", got.Title)
	assert.Equal(t, "C2", got.Content)
	assert.True(t, got.UpdatedAt.After(n.UpdatedAt))
	assert.True(t, got.CreatedAt.Equal(n.CreatedAt))
}

func TestNotes_OtherUsersGetNotFoundEvenWhenShared(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.notes.Create(ctx, f.alice, "T", "C")
	require.NoError(t, err)
	_, err = f.notes.Share(ctx, n.ID, f.bob)
	require.NoError(t, err)

	title := "hijack"
	_, err = f.notes.Get(ctx, f.bob, n.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.notes.Update(ctx, f.bob, n.ID, &title, nil)
	require.ErrorIs(t, err, models.ErrNotFound)
	require.ErrorIs(t, f.notes.Delete(ctx, f.bob, n.ID), models.ErrNotFound)

	// missing note reports the same error
	_, err = f.notes.Get(ctx, f.bob, 99999)
	require.ErrorIs(t, err, models.ErrNotFound)

	got, err := f.notes.Get(ctx, f.alice, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
}

func TestNotes_ListIncludesSharedOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shared, _ := f.notes.Create(ctx, f.alice, "shared", "x")
	_, _ = f.notes.Create(ctx, f.alice, "private", "y")

	list, err := f.notes.List(ctx, f.bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.notes.Share(ctx, shared.ID, f.bob)
	require.NoError(t, err)

	list, err = f.notes.List(ctx, f.bob)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, shared.ID, list[0].ID)
	assert.Equal(t, []int64{f.bob}, list[0].SharedWith)

	list, err = f.notes.List(ctx, f.alice)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestNotes_ShareIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n, _ := f.notes.Create(ctx, f.alice, "T", "C")

	res, err := f.notes.Share(ctx, n.ID, f.bob)
	require.NoError(t, err)
	assert.Equal(t, Shared, res)
	assert.Equal(t, "Note shared", res.String())

	res, err = f.notes.Share(ctx, n.ID, f.bob)
	require.NoError(t, err)
	assert.Equal(t, AlreadyShared, res)
	assert.Equal(t, "Note already shared", res.String())

	got, err := f.notes.Get(ctx, f.alice, n.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.bob}, got.SharedWith)

	require.Len(t, f.publisher.events, 1, "only the first share emits an event")
	assert.Equal(t, events.NoteShared{NoteID: n.ID, OwnerID: f.alice, UserID: f.bob, SharedAt: f.publisher.events[0].SharedAt}, f.publisher.events[0])
}

func TestNotes_ShareEdgeCases(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n, _ := f.notes.Create(ctx, f.alice, "T", "C")

	_, err := f.notes.Share(ctx, n.ID, 0)
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = f.notes.Share(ctx, 99999, f.bob)
	require.ErrorIs(t, err, models.ErrNotFound)

	// unscoped: bob may share alice's note with a user that does not exist
	res, err := f.notes.Share(ctx, n.ID, 777)
	require.NoError(t, err)
	assert.Equal(t, Shared, res)

	// a publish failure does not undo the share
	f.publisher.err = assert.AnError
	res, err = f.notes.Share(ctx, n.ID, f.bob)
	require.NoError(t, err)
	assert.Equal(t, Shared, res)
}

func TestNotes_Anonymous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n, _ := f.notes.Create(ctx, f.alice, "T", "C")

	list, err := f.notes.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.notes.Get(ctx, 0, n.ID)
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.notes.Create(ctx, 0, "T", "C")
	require.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine, _ := f.notes.Create(ctx, f.alice, "Groceries", "apples and milk")
	theirs, _ := f.notes.Create(ctx, f.bob, "Apples", "bob's apples")
	_, err := f.notes.Share(ctx, theirs.ID, f.alice)
	require.NoError(t, err)

	_, err = f.search.Search(ctx, f.alice, "")
	require.ErrorIs(t, err, models.ErrValidation)
	_, err = f.search.Search(ctx, f.alice, "  !! ")
	require.ErrorIs(t, err, models.ErrValidation)

	found, err := f.search.Search(ctx, f.alice, "apples")
	require.NoError(t, err)
	require.Len(t, found, 1, "shared notes are never searched")
	assert.Equal(t, mine.ID, found[0].ID)

	found, err = f.search.Search(ctx, f.alice, "bananas")
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = f.search.Search(ctx, f.alice, `milk" OR "*`)
	require.NoError(t, err, "operator characters are neutralised")
	assert.Len(t, found, 1)

	found, err = f.search.Search(ctx, 0, "apples")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestMatchExpression(t *testing.T) {
	assert.Equal(t, "", MatchExpression(""))
	assert.Equal(t, `"hello"`, MatchExpression("hello"))
	assert.Equal(t, `"buy" OR "milk"`, MatchExpression(" buy, milk! "))
	assert.Equal(t, `"a" OR "b"`, MatchExpression(`a" -b*`))
}
