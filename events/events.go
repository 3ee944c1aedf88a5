package events

import (
	"context"
	"time"
)

// NoteShared is emitted after a user is newly added to a note's share list.
type NoteShared struct {
	NoteID   int64     `json:"note_id"`
	OwnerID  int64     `json:"owner_id"`
	UserID   int64     `json:"user_id"`
	SharedAt time.Time `json:"shared_at"`
}

// Publisher delivers domain events to the outside world.
type Publisher interface {
	PublishNoteShared(ctx context.Context, evt NoteShared) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishNoteShared(context.Context, NoteShared) error { return nil }
func (NopPublisher) Close() error                                       { return nil }
