package service

import (
	"context"
	"fmt"
	"time"

	"notes-service/events"
	"notes-service/models"

	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// NoteStore is the persistence the notes and search services run against.
type NoteStore interface {
	Create(ctx context.Context, owner int64, title, content string, now time.Time) (*models.Note, error)
	GetOwned(ctx context.Context, id, owner int64) (*models.Note, error)
	GetByID(ctx context.Context, id int64) (*models.Note, error)
	UpdateOwned(ctx context.Context, id, owner int64, title, content *string, now time.Time) (*models.Note, error)
	DeleteOwned(ctx context.Context, id, owner int64) error
	ListVisible(ctx context.Context, user int64) ([]models.Note, error)
	SearchOwned(ctx context.Context, user int64, match string) ([]models.Note, error)
	AddShare(ctx context.Context, noteID, user int64) (bool, error)
}

// ShareResult reports whether Share changed the note.
type ShareResult int

const (
	Shared ShareResult = iota
	AlreadyShared
)

func (r ShareResult) String() string {
	if r == AlreadyShared {
		return "Note already shared"
	}
	return "Note shared"
}

// NotesService runs note operations on behalf of a session user. A zero user
// id is anonymous: it owns nothing and nothing is shared with it.
//
// Visibility is deliberately uneven: List includes notes shared with the user,
// Get, Update and Delete are owner-only, and Share is not scoped by owner.
type NotesService struct {
	store     NoteStore
	publisher events.Publisher
	now       func() time.Time
}

func NewNotesService(store NoteStore, publisher events.Publisher) *NotesService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &NotesService{store: store, publisher: publisher, now: func() time.Time { return time.Now().UTC() }}
}

// List returns notes the user owns or that are shared with the user.
func (s *NotesService) List(ctx context.Context, user int64) ([]models.Note, error) {
	if user == 0 {
		return []models.Note{}, nil
	}
	return s.store.ListVisible(ctx, user)
}

// Create stores a new note owned by user. An anonymous caller cannot own notes.
func (s *NotesService) Create(ctx context.Context, user int64, title, content string) (*models.Note, error) {
	if user == 0 {
		return nil, models.ErrUnauthenticated
	}
	return s.store.Create(ctx, user, title, content, s.now())
}

// Get returns the note only to its owner; sharing does not grant access here.
func (s *NotesService) Get(ctx context.Context, user, id int64) (*models.Note, error) {
	return s.store.GetOwned(ctx, id, user)
}

// Update changes title and/or content of an owned note. Missing and foreign
// notes both fail with models.ErrNotFound.
func (s *NotesService) Update(ctx context.Context, user, id int64, title, content *string) (*models.Note, error) {
	return s.store.UpdateOwned(ctx, id, user, title, content, s.now())
}

// Delete removes an owned note, with the same not-found rule as Update.
func (s *NotesService) Delete(ctx context.Context, user, id int64) error {
	return s.store.DeleteOwned(ctx, id, user)
}

// Share adds target to the note's share list. Any caller may share any note,
// and target is not checked against the user table. Sharing twice is a no-op.
func (s *NotesService) Share(ctx context.Context, id, target int64) (ShareResult, error) {
	if target <= 0 {
		return Shared, fmt.Errorf("userId is required: %w", models.ErrValidation)
	}

	note, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Shared, err
	}

	added, err := s.store.AddShare(ctx, id, target)
	if err != nil {
		return Shared, err
	}
	if !added {
		return AlreadyShared, nil
	}

	evt := events.NoteShared{NoteID: id, OwnerID: note.Owner, UserID: target, SharedAt: s.now()}
	if err := s.publisher.PublishNoteShared(ctx, evt); err != nil {
		logger.Error("Failed to publish note shared event", zap.Error(err), zap.Int64("note_id", id))
	}
	return Shared, nil
}
