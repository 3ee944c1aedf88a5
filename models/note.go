package models

import "time"

// Note is a piece of text owned by one user and optionally shared with others.
// SharedWith keeps the order in which users were added and never holds duplicates.
type Note struct {
	ID         int64     `json:"id" db:"id"`
	Owner      int64     `json:"owner" db:"owner_id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	SharedWith []int64   `json:"shared_with" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// CreateNoteRequest represents the POST /api/notes body
type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateNoteRequest represents the PUT /api/notes/{id} body.
// Omitted fields keep their stored value.
type UpdateNoteRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// ShareNoteRequest represents the POST /api/notes/{id}/share body
type ShareNoteRequest struct {
	UserID int64 `json:"userId"`
}
