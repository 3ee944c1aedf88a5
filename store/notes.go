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
)

var noteColumns = []string{"id", "owner_id", "title", "content", "created_at", "updated_at"}

// NoteStore persists notes, their share lists and the full-text index over title and content.
// Every read that takes an owner is scoped by it; only GetByID and AddShare are unscoped.
type NoteStore struct {
	db *sqlx.DB
}

func NewNoteStore(db *sqlx.DB) *NoteStore {
	return &NoteStore{db: db}
}

// Create inserts a note with an empty share list.
func (s *NoteStore) Create(ctx context.Context, owner int64, title, content string, now time.Time) (*models.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args, err := psql.Insert("notes").
		Columns("owner_id", "title", "content", "created_at", "updated_at").
		Values(owner, title, content, now, now).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read note id: %w", err)
	}

	return &models.Note{
		ID:         id,
		Owner:      owner,
		Title:      title,
		Content:    content,
		SharedWith: []int64{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// GetOwned returns the note only when owner matches.
func (s *NoteStore) GetOwned(ctx context.Context, id, owner int64) (*models.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return s.getOne(ctx, s.db, squirrel.Eq{"id": id, "owner_id": owner})
}

// GetByID returns the note regardless of owner.
func (s *NoteStore) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return s.getOne(ctx, s.db, squirrel.Eq{"id": id})
}

// UpdateOwned sets the non-nil fields and updated_at in a single owner-scoped UPDATE,
// then returns the stored note.
func (s *NoteStore) UpdateOwned(ctx context.Context, id, owner int64, title, content *string, now time.Time) (*models.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q := psql.Update("notes").
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "owner_id": owner})
	if title != nil {
		q = q.Set("title", *title)
	}
	if content != nil {
		q = q.Set("content", *content)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update note %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to update note %d: %w", id, err)
	} else if n == 0 {
		return nil, models.ErrNotFound
	}

	note, err := s.getOne(ctx, tx, squirrel.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}
	return note, nil
}

// DeleteOwned removes the note when owner matches. Its shares and index entry go with it.
func (s *NoteStore) DeleteOwned(ctx context.Context, id, owner int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args, err := psql.Delete("notes").Where(squirrel.Eq{"id": id, "owner_id": owner}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete note %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete note %d: %w", id, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListVisible returns notes owned by user or shared with user, in store order.
func (s *NoteStore) ListVisible(ctx context.Context, user int64) ([]models.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.list(ctx, squirrel.Or{
		squirrel.Eq{"owner_id": user},
		squirrel.Expr("id IN (SELECT note_id FROM note_shares WHERE user_id = ?)", user),
	})
}

// SearchOwned returns notes owned by user whose title or content matches the
// full-text expression. Shared notes are not included.
func (s *NoteStore) SearchOwned(ctx context.Context, user int64, match string) ([]models.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.list(ctx, squirrel.And{
		squirrel.Eq{"owner_id": user},
		squirrel.Expr("id IN (SELECT docid FROM notes_fts WHERE notes_fts MATCH ?)", match),
	})
}

// AddShare appends user to the note's share list. It reports false without
// changing anything when user is already present. The note must exist.
func (s *NoteStore) AddShare(ctx context.Context, noteID, user int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin share: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM notes WHERE id = ?)`, noteID); err != nil {
		return false, fmt.Errorf("failed to check note %d: %w", noteID, err)
	}
	if !exists {
		return false, models.ErrNotFound
	}

	query, args, err := psql.Insert("note_shares").
		Options("OR IGNORE").
		Columns("note_id", "user_id").
		Values(noteID, user).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to share note %d: %w", noteID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to share note %d: %w", noteID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit share: %w", err)
	}
	return n == 1, nil
}

func (s *NoteStore) getOne(ctx context.Context, q sqlx.QueryerContext, pred squirrel.Sqlizer) (*models.Note, error) {
	query, args, err := psql.Select(noteColumns...).From("notes").Where(pred).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var note models.Note
	if err := sqlx.GetContext(ctx, q, &note, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	notes := []models.Note{note}
	if err := s.attachShares(ctx, q, notes); err != nil {
		return nil, err
	}
	return &notes[0], nil
}

func (s *NoteStore) list(ctx context.Context, pred squirrel.Sqlizer) ([]models.Note, error) {
	query, args, err := psql.Select(noteColumns...).From("notes").Where(pred).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	notes := []models.Note{}
	if err := s.db.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	if err := s.attachShares(ctx, s.db, notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// attachShares fills SharedWith for every note, in the order the shares were added.
func (s *NoteStore) attachShares(ctx context.Context, q sqlx.QueryerContext, notes []models.Note) error {
	if len(notes) == 0 {
		return nil
	}
	ids := make([]int64, len(notes))
	byID := make(map[int64]int, len(notes))
	for i := range notes {
		ids[i] = notes[i].ID
		byID[notes[i].ID] = i
		notes[i].SharedWith = []int64{}
	}

	query, args, err := psql.Select("note_id", "user_id").
		From("note_shares").
		Where(squirrel.Eq{"note_id": ids}).
		OrderBy("rowid").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var noteID, userID int64
		if err := rows.Scan(&noteID, &userID); err != nil {
			return fmt.Errorf("failed to scan share: %w", err)
		}
		if i, ok := byID[noteID]; ok {
			notes[i].SharedWith = append(notes[i].SharedWith, userID)
		}
	}
	return rows.Err()
}
