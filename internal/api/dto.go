package api

import "github.com/halden/jotter/internal/models"

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags,omitempty"`
}

// UpdateNoteRequest is the request body for a partial update. Absent fields
// are left untouched; a present tags field replaces the whole tag list.
type UpdateNoteRequest struct {
	Title *string   `json:"title,omitempty"`
	Body  *string   `json:"body,omitempty"`
	Tags  *[]string `json:"tags,omitempty"`
}

// NoteResponse is the full note payload (aliased from the domain layer).
type NoteResponse = models.Note

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteResponse `json:"notes"`
	Total int            `json:"total"`
}

// TagUsageResponse maps each tag to the number of active notes carrying it.
type TagUsageResponse struct {
	Tags map[string]int `json:"tags"`
}

// PurgeAllResponse reports how many notes a bulk purge removed.
type PurgeAllResponse struct {
	Purged int `json:"purged"`
}
