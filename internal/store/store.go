// Package store abstracts the remote record store behind four verbs over a
// single "notes" collection. Records cross this boundary loosely typed
// (string timestamps, JSON-encoded tags); the repository layer owns the
// strict mapping to domain types.
package store

import (
	"context"
	"time"
)

// TimeLayout encodes record timestamps with all nine fractional digits, so
// lexicographic order on the TEXT columns matches chronological order.
// time.RFC3339Nano trims trailing zeros and would break ORDER BY.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t in TimeLayout, normalized to UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Record is a note-shaped row as the persistence service sees it.
// Timestamps are RFC 3339 text and Tags is a JSON array; both are validated
// only when mapped to a domain Note.
type Record struct {
	ID        string
	Title     string
	Body      string
	Tags      string
	CreatedAt string
	UpdatedAt string
	DeletedAt *string
}

// Filter selects records. Zero value matches everything.
type Filter struct {
	// ID, when non-empty, matches the single record with that id.
	ID string
	// Deleted, when non-nil, constrains the soft-delete state:
	// false matches "deleted_at is null", true matches "deleted_at is not null".
	Deleted *bool
}

// Sortable record fields.
const (
	OrderCreatedAt = "created_at"
	OrderUpdatedAt = "updated_at"
	OrderDeletedAt = "deleted_at"
)

// Order describes the result ordering of Select.
type Order struct {
	Field string
	Desc  bool
}

// Patch is a partial update applied by UpdateWhere. Nil fields are left
// untouched; ClearDeleted resets deleted_at to null and wins over DeletedAt.
type Patch struct {
	Title        *string
	Body         *string
	Tags         *string
	UpdatedAt    *string
	DeletedAt    *string
	ClearDeleted bool
}

// Service is the narrow CRUD contract the repository consumes.
// Implementations report transport or service failures as plain errors;
// "nothing matched" is expressed through empty results and zero counts,
// never through an error.
type Service interface {
	// Select returns all records matching the filter in the given order.
	Select(ctx context.Context, f Filter, o Order) ([]Record, error)
	// Insert persists one record, assigning id and timestamps, and returns it.
	Insert(ctx context.Context, r Record) (Record, error)
	// UpdateWhere applies the patch to every matching record and returns the
	// updated records.
	UpdateWhere(ctx context.Context, f Filter, p Patch) ([]Record, error)
	// DeleteWhere permanently removes matching records and returns how many.
	DeleteWhere(ctx context.Context, f Filter) (int, error)
	Close() error
}

// Active and Deleted are ready-made soft-delete state filters.
func Active() Filter  { v := false; return Filter{Deleted: &v} }
func Deleted() Filter { v := true; return Filter{Deleted: &v} }

// ActiveByID filters on one id in the active state.
func ActiveByID(id string) Filter { f := Active(); f.ID = id; return f }

// DeletedByID filters on one id in the soft-deleted state.
func DeletedByID(id string) Filter { f := Deleted(); f.ID = id; return f }
