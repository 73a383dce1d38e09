// Package models defines the domain types for Jotter.
package models

import "time"

// UI contract caps for tags. The repository does not enforce them; they are
// caller-side validation concerns. Aggregation and querying must tolerate
// notes that exceed them.
const (
	MaxTagLength   = 20
	MaxTagsPerNote = 10
)

// Note is the sole persisted entity. A note with DeletedAt == nil is active;
// with DeletedAt set it is soft-deleted and hidden from standard reads until
// restored or purged.
type Note struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Tags      []string   `json:"tags,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Active reports whether the note is visible to standard listing and reads.
func (n Note) Active() bool {
	return n.DeletedAt == nil
}

// Patch is a partial content update. Nil fields are left untouched.
// Tags replaces the whole tag list when non-nil.
type Patch struct {
	Title *string
	Body  *string
	Tags  *[]string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Body == nil && p.Tags == nil
}
