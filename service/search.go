package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"notes-service/models"
)

// SearchService runs full-text queries over the caller's own notes.
// Notes shared with the caller are not searched.
type SearchService struct {
	store NoteStore
}

func NewSearchService(store NoteStore) *SearchService {
	return &SearchService{store: store}
}

// Search returns owned notes whose title or content matches any word of q.
func (s *SearchService) Search(ctx context.Context, user int64, q string) ([]models.Note, error) {
	match := MatchExpression(q)
	if match == "" {
		return nil, fmt.Errorf("query parameter q is required: %w", models.ErrValidation)
	}
	if user == 0 {
		return []models.Note{}, nil
	}
	return s.store.SearchOwned(ctx, user, match)
}

// MatchExpression turns free text into a full-text expression matching any of
// its words. Each word is quoted so operator characters in user input are inert.
func MatchExpression(q string) string {
	words := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return ""
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = `"` + w + `"`
	}
	return strings.Join(quoted, " OR ")
}
