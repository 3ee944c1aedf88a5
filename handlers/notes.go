package handlers

import (
	"context"
	"net/http"

	"notes-service/models"
	"notes-service/service"
	"notes-service/session"

	"go.uber.org/zap"
)

// NotesHandler serves /api/notes. The caller's identity always comes from the
// session cookie; the API key only says the client may call the API at all.
type NotesHandler struct {
	notes    *service.NotesService
	sessions *session.Manager
}

func NewNotesHandler(notes *service.NotesService, sessions *session.Manager) *NotesHandler {
	return &NotesHandler{notes: notes, sessions: sessions}
}

// currentUser resolves the session user, zero when anonymous. It writes a 500
// and returns false only when the session store fails.
func (h *NotesHandler) currentUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (int64, bool) {
	uid, err := h.sessions.UserID(ctx, r)
	if err != nil {
		writeServiceError(ctx, w, err, "")
		return 0, false
	}
	return uid, true
}

// GetNotes handles GET /api/notes - owned notes plus notes shared with the caller
func (h *NotesHandler) GetNotes(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	uid, ok := h.currentUser(ctx, w, r)
	if !ok {
		return
	}

	notes, err := h.notes.List(ctx, uid)
	if err != nil {
		writeServiceError(ctx, w, err, "")
		return
	}

	logRequest(ctx, "info", "Notes listed", zap.Int64("user_id", uid), zap.Int("count", len(notes)))
	writeJSON(w, http.StatusOK, notes)
}

// CreateNote handles POST /api/notes
func (h *NotesHandler) CreateNote(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	uid, ok := h.currentUser(ctx, w, r)
	if !ok {
		return
	}

	var req models.CreateNoteRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}

	note, err := h.notes.Create(ctx, uid, req.Title, req.Content)
	if err != nil {
		writeServiceError(ctx, w, err, "")
		return
	}

	logRequest(ctx, "info", "Note created", zap.Int64("user_id", uid), zap.Int64("note_id", note.ID))
	writeJSON(w, http.StatusCreated, note)
}

// GetNote handles GET /api/notes/{id} - owner only
func (h *NotesHandler) GetNote(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(ctx, w, r)
	if !ok {
		return
	}
	uid, ok := h.currentUser(ctx, w, r)
	if !ok {
		return
	}

	note, err := h.notes.Get(ctx, uid, id)
	if err != nil {
		writeServiceError(ctx, w, err, "Note not found")
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// UpdateNote handles PUT /api/notes/{id} - owner only; omitted fields are kept
func (h *NotesHandler) UpdateNote(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(ctx, w, r)
	if !ok {
		return
	}
	uid, ok := h.currentUser(ctx, w, r)
	if !ok {
		return
	}

	var req models.UpdateNoteRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}

	note, err := h.notes.Update(ctx, uid, id, req.Title, req.Content)
	if err != nil {
		writeServiceError(ctx, w, err, "Note not found")
		return
	}

	logRequest(ctx, "info", "Note updated", zap.Int64("user_id", uid), zap.Int64("note_id", id))
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id} - owner only
func (h *NotesHandler) DeleteNote(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(ctx, w, r)
	if !ok {
		return
	}
	uid, ok := h.currentUser(ctx, w, r)
	if !ok {
		return
	}

	if err := h.notes.Delete(ctx, uid, id); err != nil {
		writeServiceError(ctx, w, err, "Note not found")
		return
	}

	logRequest(ctx, "info", "Note deleted", zap.Int64("user_id", uid), zap.Int64("note_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ShareNote handles POST /api/notes/{id}/share. Not scoped by owner.
func (h *NotesHandler) ShareNote(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(ctx, w, r)
	if !ok {
		return
	}

	var req models.ShareNoteRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}

	res, err := h.notes.Share(ctx, id, req.UserID)
	if err != nil {
		writeServiceError(ctx, w, err, "Note not found")
		return
	}

	logRequest(ctx, "info", res.String(), zap.Int64("note_id", id), zap.Int64("target_user_id", req.UserID))
	writeText(w, http.StatusOK, res.String())
}
