// Package noterepo implements the note repository: lifecycle operations
// (create, update, soft delete, restore, purge) as a stateless
// validation+mapping layer over the persistence service. Every operation is
// exactly one round trip; the repository keeps no local state.
package noterepo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/halden/jotter/internal/apperr"
	"github.com/halden/jotter/internal/models"
	"github.com/halden/jotter/internal/store"
)

// Repository exposes note lifecycle operations against a persistence service.
type Repository struct {
	svc store.Service
}

// New creates a repository over the given persistence service.
func New(svc store.Service) *Repository {
	return &Repository{svc: svc}
}

// List returns all active notes ordered by updated_at descending.
func (r *Repository) List(ctx context.Context) ([]models.Note, error) {
	recs, err := r.svc.Select(ctx, store.Active(), store.Order{Field: store.OrderUpdatedAt, Desc: true})
	if err != nil {
		return nil, apperr.Store("list", err)
	}
	return mapRecords(recs)
}

// ListDeleted returns all soft-deleted notes ordered by deleted_at descending.
func (r *Repository) ListDeleted(ctx context.Context) ([]models.Note, error) {
	recs, err := r.svc.Select(ctx, store.Deleted(), store.Order{Field: store.OrderDeletedAt, Desc: true})
	if err != nil {
		return nil, apperr.Store("list deleted", err)
	}
	return mapRecords(recs)
}

// Get returns the active note with the given id. A soft-deleted note is not
// found by Get.
func (r *Repository) Get(ctx context.Context, id string) (models.Note, error) {
	if err := validateID(id); err != nil {
		return models.Note{}, err
	}
	recs, err := r.svc.Select(ctx, store.ActiveByID(id), store.Order{})
	if err != nil {
		return models.Note{}, apperr.Store("get", err)
	}
	if len(recs) == 0 {
		return models.Note{}, apperr.NotFound(id)
	}
	return mapRecord(recs[0])
}

// Create validates and persists a new active note. The persistence service
// assigns id and timestamps.
func (r *Repository) Create(ctx context.Context, title, body string, tags []string) (models.Note, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if err := validation.Validate(title, validation.Required.Error("title must not be blank")); err != nil {
		return models.Note{}, apperr.Validation("title: %v", err)
	}
	rec, err := r.svc.Insert(ctx, store.Record{
		Title: title,
		Body:  body,
		Tags:  encodeTags(tags),
	})
	if err != nil {
		return models.Note{}, apperr.Store("create", err)
	}
	return mapRecord(rec)
}

// Update applies a partial content update to an active note and refreshes
// updated_at. Updating a soft-deleted or unknown note fails with ErrNotFound.
func (r *Repository) Update(ctx context.Context, id string, patch models.Patch) (models.Note, error) {
	if err := validateID(id); err != nil {
		return models.Note{}, err
	}
	if patch.Empty() {
		return models.Note{}, apperr.Validation("empty patch")
	}

	var sp store.Patch
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := validation.Validate(title, validation.Required.Error("title must not be blank")); err != nil {
			return models.Note{}, apperr.Validation("title: %v", err)
		}
		sp.Title = &title
	}
	if patch.Body != nil {
		body := strings.TrimSpace(*patch.Body)
		sp.Body = &body
	}
	if patch.Tags != nil {
		tags := encodeTags(*patch.Tags)
		sp.Tags = &tags
	}
	now := timestamp()
	sp.UpdatedAt = &now

	recs, err := r.svc.UpdateWhere(ctx, store.ActiveByID(id), sp)
	if err != nil {
		return models.Note{}, apperr.Store("update", err)
	}
	if len(recs) == 0 {
		return models.Note{}, apperr.NotFound(id)
	}
	return mapRecord(recs[0])
}

// SoftDelete marks an active note deleted at the current time. It does not
// touch updated_at. Re-deleting an already deleted note fails with
// ErrNotFound rather than no-op.
func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	now := timestamp()
	recs, err := r.svc.UpdateWhere(ctx, store.ActiveByID(id), store.Patch{DeletedAt: &now})
	if err != nil {
		return apperr.Store("soft delete", err)
	}
	if len(recs) == 0 {
		return apperr.NotFound(id)
	}
	return nil
}

// Restore clears the deletion mark of a soft-deleted note. It does not touch
// updated_at. Restoring an active or unknown note fails with ErrNotFound.
func (r *Repository) Restore(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	recs, err := r.svc.UpdateWhere(ctx, store.DeletedByID(id), store.Patch{ClearDeleted: true})
	if err != nil {
		return apperr.Store("restore", err)
	}
	if len(recs) == 0 {
		return apperr.NotFound(id)
	}
	return nil
}

// Purge irreversibly removes a note regardless of its active or soft-deleted
// state. Purging an unknown id fails with ErrNotFound.
func (r *Repository) Purge(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	n, err := r.svc.DeleteWhere(ctx, store.Filter{ID: id})
	if err != nil {
		return apperr.Store("purge", err)
	}
	if n == 0 {
		return apperr.NotFound(id)
	}
	return nil
}

// PurgeAll removes every note, active and soft-deleted, and returns how many
// were removed. There is no partial-failure recovery: on error callers must
// re-list to learn the resulting state.
func (r *Repository) PurgeAll(ctx context.Context) (int, error) {
	n, err := r.svc.DeleteWhere(ctx, store.Filter{})
	if err != nil {
		return 0, apperr.Store("purge all", err)
	}
	return n, nil
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("id is required")
	}
	return nil
}

func timestamp() string {
	return store.FormatTime(time.Now())
}

func encodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

// mapRecord is the single strict mapping step from a loosely typed store
// record to a domain Note. A record without an id is rejected as a store
// failure; malformed timestamps map to the zero time (the query pipeline
// degrades gracefully on those) and malformed tags map to no tags.
func mapRecord(rec store.Record) (models.Note, error) {
	if rec.ID == "" {
		return models.Note{}, apperr.Store("map record", errors.New("record missing id"))
	}
	n := models.Note{
		ID:        rec.ID,
		Title:     rec.Title,
		Body:      rec.Body,
		CreatedAt: parseTime(rec.CreatedAt),
		UpdatedAt: parseTime(rec.UpdatedAt),
	}
	if rec.DeletedAt != nil {
		t := parseTime(*rec.DeletedAt)
		n.DeletedAt = &t
	}
	if rec.Tags != "" && rec.Tags != "[]" {
		var tags []string
		if err := json.Unmarshal([]byte(rec.Tags), &tags); err == nil {
			n.Tags = tags
		}
	}
	return n, nil
}

func mapRecords(recs []store.Record) ([]models.Note, error) {
	out := make([]models.Note, 0, len(recs))
	for _, rec := range recs {
		n, err := mapRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
