package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/halden/jotter/internal/apperr"
	"github.com/halden/jotter/internal/models"
	"github.com/halden/jotter/internal/noterepo"
	"github.com/halden/jotter/internal/query"
	"github.com/halden/jotter/internal/tags"
)

// Publisher broadcasts note lifecycle events to connected clients.
type Publisher interface {
	PublishNoteEvent(kind, id string)
}

// Handler holds API route handlers.
type Handler struct {
	repo   *noterepo.Repository
	events Publisher // may be nil
}

// NewHandler creates a new Handler. events may be nil when no broadcasting
// is wired.
func NewHandler(repo *noterepo.Repository, events Publisher) *Handler {
	return &Handler{repo: repo, events: events}
}

func (h *Handler) publish(kind, id string) {
	if h.events != nil {
		h.events.PublishNoteEvent(kind, id)
	}
}

// writeError maps the repository error taxonomy to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrStore):
		slog.Error("store failure", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("store unavailable"))
	default:
		slog.Error("unexpected failure", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// criteriaFromQuery builds query criteria from URL parameters:
// q, date (all|today|week|month), tags (comma separated), tagged, long,
// sort (recent|alphabetical|oldest|most_edited).
func criteriaFromQuery(r *http.Request) query.Criteria {
	q := r.URL.Query()
	c := query.Criteria{
		Search:        q.Get("q"),
		Date:          query.DateFilter(q.Get("date")),
		TaggedOnly:    q.Get("tagged") == "true",
		LongNotesOnly: q.Get("long") == "true",
		SortBy:        query.SortOption(q.Get("sort")),
	}
	if raw := q.Get("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				c.Tags = append(c.Tags, t)
			}
		}
	}
	return c
}

// ListNotes handles GET /notes: the active collection run through the query
// pipeline on every request.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.repo.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	result := query.Apply(notes, criteriaFromQuery(r))
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: result, Total: len(result)})
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	note, err := h.repo.Create(r.Context(), req.Title, req.Body, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	h.publish("created", note.ID)
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PATCH /notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	patch := models.Patch{Title: req.Title, Body: req.Body, Tags: req.Tags}
	note, err := h.repo.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	h.publish("updated", note.ID)
	writeJSON(w, http.StatusOK, note)
}

// TrashNote handles DELETE /notes/{id} (soft delete).
func (h *Handler) TrashNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.SoftDelete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	h.publish("trashed", id)
	w.WriteHeader(http.StatusNoContent)
}

// RestoreNote handles POST /notes/{id}/restore.
func (h *Handler) RestoreNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Restore(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	h.publish("restored", id)
	w.WriteHeader(http.StatusNoContent)
}

// PurgeNote handles DELETE /notes/{id}/purge.
func (h *Handler) PurgeNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Purge(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	h.publish("purged", id)
	w.WriteHeader(http.StatusNoContent)
}

// ListTrash handles GET /trash.
func (h *Handler) ListTrash(w http.ResponseWriter, r *http.Request) {
	notes, err := h.repo.ListDeleted(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// PurgeAll handles DELETE /trash: removes every note, active and trashed.
func (h *Handler) PurgeAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.repo.PurgeAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.publish("purged", "*")
	writeJSON(w, http.StatusOK, PurgeAllResponse{Purged: n})
}

// TagUsage handles GET /tags.
func (h *Handler) TagUsage(w http.ResponseWriter, r *http.Request) {
	notes, err := h.repo.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TagUsageResponse{Tags: tags.Usage(notes)})
}
