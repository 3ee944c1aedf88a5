package handlers

import (
	"context"
	"net/http"

	"notes-service/auth"
	"notes-service/models"
	"notes-service/session"

	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// AuthHandler serves signup, login, logout and the current-user lookup.
// None of these routes need the API key.
type AuthHandler struct {
	auth     *auth.Service
	sessions *session.Manager
	users    *UserHandler
}

func NewAuthHandler(authService *auth.Service, sessions *session.Manager, users *UserHandler) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions, users: users}
}

// Signup handles POST /api/auth/signup. It does not sign the user in.
func (h *AuthHandler) Signup(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}

	logRequest(ctx, "info", "Signup request", zap.String("email", req.Email))

	user, err := h.auth.Signup(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(ctx, w, err, "User not found")
		return
	}

	if h.users != nil {
		h.users.invalidate()
	}

	logRequest(ctx, "info", "User created successfully", zap.Int64("user_id", user.ID))
	writeJSON(w, http.StatusCreated, models.MessageResponse{
		Message: "User created successfully",
		User:    &models.MeResponse{ID: user.ID, Email: user.Email},
	})
}

// Login handles POST /api/auth/login and sets the session cookie.
func (h *AuthHandler) Login(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}

	logRequest(ctx, "info", "Login request", zap.String("email", req.Email))

	user, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(ctx, w, err, "User not found")
		return
	}

	if err := h.sessions.Start(ctx, w, r, user); err != nil {
		logRequest(ctx, "error", "Failed to start session", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Error logging in"))
		return
	}

	logRequest(ctx, "info", "Login successful", zap.Int64("user_id", user.ID))
	writeJSON(w, http.StatusOK, models.MessageResponse{
		Message: "Logged in successfully",
		User:    &models.MeResponse{ID: user.ID, Email: user.Email},
	})
}

// Logout handles POST /api/auth/logout. It succeeds without a session too.
func (h *AuthHandler) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Logout request")

	if err := h.sessions.Destroy(ctx, w, r); err != nil {
		logRequest(ctx, "error", "Failed to destroy session", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Error logging out"))
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	data, err := h.sessions.Current(ctx, r)
	if err != nil {
		writeServiceError(ctx, w, err, "")
		return
	}
	if data == nil {
		writeServiceError(ctx, w, models.ErrUnauthenticated, "")
		return
	}

	logRequest(ctx, "info", "Me retrieved", zap.Int64("user_id", data.UserID))
	writeJSON(w, http.StatusOK, models.MeResponse{ID: data.UserID, Email: data.Email})
}
