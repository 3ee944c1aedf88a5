package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"notes-service/models"

	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/errs"
	"github.com/umakantv/go-utils/httpserver"
	logger "github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// logRequest logs with the route, method, path and calling client taken from
// the httpserver context, followed by message and any extra fields.
func logRequest(ctx context.Context, level string, message string, fields ...zap.Field) {
	routeName := httpserver.GetRouteName(ctx)
	method := httpserver.GetRouteMethod(ctx)
	path := httpserver.GetRoutePath(ctx)
	auth := httpserver.GetRequestAuth(ctx)

	logMsg := routeName + " - " + method + " - " + path
	if auth != nil {
		logMsg += " - client:" + auth.Client
	}
	if message != "" {
		logMsg += " - " + message
	}

	allFields := append([]zap.Field{
		zap.String("route", routeName),
		zap.String("method", method),
		zap.String("path", path),
	}, fields...)

	switch level {
	case "info":
		logger.Info(logMsg, allFields...)
	case "error":
		logger.Error(logMsg, allFields...)
	case "debug":
		logger.Debug(logMsg, allFields...)
	}
}

// newAppError builds an error body whose code matches the HTTP status it is
// sent with. go-utils has no constructors for 400 or 409.
func newAppError(status int, message string) *errs.AppError {
	return &errs.AppError{Code: status, Message: message}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// decodeBody reads a JSON body into dst, answering 400 itself on failure.
func decodeBody(ctx context.Context, w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logRequest(ctx, "error", "Invalid request body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, newAppError(http.StatusBadRequest, "Invalid JSON"))
		return false
	}
	return true
}

// noteID parses the {id} path variable. Ids that cannot exist are reported as
// not found, like ids that do not.
func noteID(ctx context.Context, w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		logRequest(ctx, "info", "Invalid note ID", zap.String("id", idStr))
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError("Note not found"))
		return 0, false
	}
	return id, true
}

// writeServiceError maps the domain error taxonomy onto HTTP responses.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		msg := strings.TrimSuffix(err.Error(), ": "+models.ErrValidation.Error())
		logRequest(ctx, "info", "Validation failed", zap.String("reason", msg))
		writeJSON(w, http.StatusBadRequest, newAppError(http.StatusBadRequest, msg))
	case errors.Is(err, models.ErrUnauthenticated):
		logRequest(ctx, "info", "Not logged in")
		writeJSON(w, http.StatusUnauthorized, errs.NewAuthenticationError("Not logged in"))
	case errors.Is(err, models.ErrInvalidCredentials):
		logRequest(ctx, "info", "Invalid credentials")
		writeJSON(w, http.StatusUnauthorized, errs.NewAuthenticationError("Invalid email or password"))
	case errors.Is(err, models.ErrNotFound):
		logRequest(ctx, "info", notFound)
		writeJSON(w, http.StatusNotFound, errs.NewNotFoundError(notFound))
	case errors.Is(err, models.ErrConflict):
		logRequest(ctx, "info", "Conflict", zap.Error(err))
		writeJSON(w, http.StatusConflict, newAppError(http.StatusConflict, "Email already registered"))
	default:
		logRequest(ctx, "error", "Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Server error"))
	}
}
