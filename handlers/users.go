package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"notes-service/models"

	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

const usersListCacheKey = "users:list"

// UserLister is the read side of the credential store.
type UserLister interface {
	List(ctx context.Context) ([]models.User, error)
}

// UserHandler serves the user listing. The cache is optional.
type UserHandler struct {
	users UserLister
	cache cache.Cache
}

func NewUserHandler(users UserLister, cache cache.Cache) *UserHandler {
	return &UserHandler{users: users, cache: cache}
}

// GetUsers handles GET /api/users - every user's id and email, no pagination
func (h *UserHandler) GetUsers(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Listing users")

	if h.cache != nil {
		// Cached as a string: the redis backend JSON-encodes values and
		// hands strings back unchanged, the memory backend stores them as is.
		if cached, err := h.cache.Get(usersListCacheKey); err == nil {
			if body, ok := cached.(string); ok && json.Valid([]byte(body)) {
				logRequest(ctx, "debug", "Serving from cache")
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
				return
			}
		}
	}

	users, err := h.users.List(ctx)
	if err != nil {
		logRequest(ctx, "error", "Failed to query users", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
		return
	}

	response, err := json.Marshal(users)
	if err != nil {
		logRequest(ctx, "error", "Failed to encode users", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Server error"))
		return
	}
	if h.cache != nil {
		if err := h.cache.Set(usersListCacheKey, string(response), 5*time.Minute); err != nil {
			logRequest(ctx, "error", "Failed to cache users", zap.Error(err))
		}
	}

	logRequest(ctx, "info", "Users retrieved successfully", zap.Int("count", len(users)))

	w.Header().Set("Content-Type", "application/json")
	w.Write(response)
}

// invalidate drops the cached listing after a signup.
func (h *UserHandler) invalidate() {
	if h.cache != nil {
		h.cache.Delete(usersListCacheKey)
	}
}
