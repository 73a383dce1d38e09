package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/halden/jotter/internal/noterepo"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, receives note lifecycle broadcasts.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(repo *noterepo.Repository, authEnabled bool, token string, events Publisher, sseHandler http.Handler) chi.Router {
	h := NewHandler(repo, events)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes lifecycle.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Patch("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.TrashNote)
	r.Post("/notes/{id}/restore", h.RestoreNote)
	r.Delete("/notes/{id}/purge", h.PurgeNote)

	// Trash.
	r.Get("/trash", h.ListTrash)
	r.Delete("/trash", h.PurgeAll)

	// Tag usage.
	r.Get("/tags", h.TagUsage)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
