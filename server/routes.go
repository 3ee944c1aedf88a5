package server

import (
	"context"
	"net/http"

	"notes-service/access"
	"notes-service/handlers"
	"notes-service/metrics"

	"github.com/umakantv/go-utils/httpserver"
)

// Handlers groups what the route table dispatches to.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Users  *handlers.UserHandler
	Notes  *handlers.NotesHandler
	Search *handlers.SearchHandler
}

// NewServer builds the HTTP server with every route registered. The API key
// is checked by httpserver itself for every route not registered as "none".
func NewServer(port string, keys access.Validator, h Handlers, limiter access.Limiter, trustProxy bool) *httpserver.Server {
	server := httpserver.New(port, access.CheckAuth(keys))
	registerRoutes(server, h, limiter, trustProxy)
	return server
}

func registerRoutes(server *httpserver.Server, h Handlers, limiter access.Limiter, trustProxy bool) {
	r := &registrar{server: server, limiter: limiter, trustProxy: trustProxy}

	r.public("HealthCheck", http.MethodGet, "/health", func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "notes-service"}`))
	})
	r.public("Metrics", http.MethodGet, "/metrics", metrics.Handler())

	r.public("Signup", http.MethodPost, "/api/auth/signup", h.Auth.Signup)
	r.public("Login", http.MethodPost, "/api/auth/login", h.Auth.Login)
	r.public("Logout", http.MethodPost, "/api/auth/logout", h.Auth.Logout)
	r.public("Me", http.MethodGet, "/api/auth/me", h.Auth.Me)

	r.protected("ListUsers", http.MethodGet, "/api/users", h.Users.GetUsers)
	r.protected("SearchNotes", http.MethodGet, "/api/search", h.Search.Search)

	r.limited("ListNotes", http.MethodGet, "/api/notes", h.Notes.GetNotes)
	r.limited("CreateNote", http.MethodPost, "/api/notes", h.Notes.CreateNote)
	r.limited("GetNote", http.MethodGet, "/api/notes/{id}", h.Notes.GetNote)
	r.limited("UpdateNote", http.MethodPut, "/api/notes/{id}", h.Notes.UpdateNote)
	r.limited("DeleteNote", http.MethodDelete, "/api/notes/{id}", h.Notes.DeleteNote)
	r.limited("ShareNote", http.MethodPost, "/api/notes/{id}/share", h.Notes.ShareNote)
}

// registrar registers routes with the middleware each class of route needs.
// Every handler is instrumented; protected routes need an API key and note
// routes are additionally rate limited per client address.
type registrar struct {
	server     *httpserver.Server
	limiter    access.Limiter
	trustProxy bool
}

func (r *registrar) public(name, method, path string, h httpserver.HandlerFunc) {
	r.server.Register(httpserver.Route{
		Name:     name,
		Method:   method,
		Path:     path,
		AuthType: "none",
	}, metrics.Instrument(name, h))
}

func (r *registrar) protected(name, method, path string, h httpserver.HandlerFunc) {
	r.server.Register(httpserver.Route{
		Name:     name,
		Method:   method,
		Path:     path,
		AuthType: access.AuthType,
	}, metrics.Instrument(name, h))
}

func (r *registrar) limited(name, method, path string, h httpserver.HandlerFunc) {
	r.protected(name, method, path, access.RateLimit(r.limiter, r.trustProxy, h))
}
