package handlers

import (
	"context"
	"net/http"

	"notes-service/service"
	"notes-service/session"

	"go.uber.org/zap"
)

type SearchHandler struct {
	search   *service.SearchService
	sessions *session.Manager
}

func NewSearchHandler(search *service.SearchService, sessions *session.Manager) *SearchHandler {
	return &SearchHandler{search: search, sessions: sessions}
}

// Search handles GET /api/search?q= over the caller's own notes
func (h *SearchHandler) Search(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	uid, err := h.sessions.UserID(ctx, r)
	if err != nil {
		writeServiceError(ctx, w, err, "")
		return
	}

	notes, err := h.search.Search(ctx, uid, q)
	if err != nil {
		writeServiceError(ctx, w, err, "")
		return
	}

	logRequest(ctx, "info", "Search completed", zap.Int64("user_id", uid), zap.Int("count", len(notes)))
	writeJSON(w, http.StatusOK, notes)
}
