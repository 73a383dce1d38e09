package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	deleted_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_notes_deleted_at ON notes(deleted_at);
CREATE INDEX IF NOT EXISTS idx_notes_updated_at ON notes(updated_at);
`

// SQLite implements Service on a local SQLite database.
type SQLite struct {
	conn *sql.DB
}

var _ Service = (*SQLite)(nil)

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// whereClause renders a filter as SQL. An empty filter yields no WHERE part.
func whereClause(f Filter) (string, []any) {
	var conds []string
	var args []any
	if f.ID != "" {
		conds = append(conds, "id = ?")
		args = append(args, f.ID)
	}
	if f.Deleted != nil {
		if *f.Deleted {
			conds = append(conds, "deleted_at IS NOT NULL")
		} else {
			conds = append(conds, "deleted_at IS NULL")
		}
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause renders an order, restricted to the known sortable columns.
func orderClause(o Order) string {
	switch o.Field {
	case OrderCreatedAt, OrderUpdatedAt, OrderDeletedAt:
	default:
		return ""
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", o.Field, dir, dir)
}

const recordCols = "id, title, body, tags, created_at, updated_at, deleted_at"

func scanRecord(sc interface{ Scan(...any) error }) (Record, error) {
	var r Record
	var deleted sql.NullString
	if err := sc.Scan(&r.ID, &r.Title, &r.Body, &r.Tags, &r.CreatedAt, &r.UpdatedAt, &deleted); err != nil {
		return Record{}, err
	}
	if deleted.Valid {
		r.DeletedAt = &deleted.String
	}
	return r, nil
}

// Select returns all records matching the filter in the given order.
func (s *SQLite) Select(ctx context.Context, f Filter, o Order) ([]Record, error) {
	where, args := whereClause(f)
	rows, err := s.conn.QueryContext(ctx, "SELECT "+recordCols+" FROM notes"+where+orderClause(o), args...)
	if err != nil {
		return nil, fmt.Errorf("store: select: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Insert persists a new record with a generated id and timestamps.
// Only Title, Body and Tags are taken from the argument; the record is
// always created active.
func (s *SQLite) Insert(ctx context.Context, r Record) (Record, error) {
	now := FormatTime(time.Now())
	created := Record{
		ID:        uuid.NewString(),
		Title:     r.Title,
		Body:      r.Body,
		Tags:      r.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if created.Tags == "" {
		created.Tags = "[]"
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO notes (id, title, body, tags, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL)
	`, created.ID, created.Title, created.Body, created.Tags, created.CreatedAt, created.UpdatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("store: insert: %w", err)
	}
	return created, nil
}

// UpdateWhere applies the patch to every record matching the filter and
// returns the updated records. The match set is pinned before the patch is
// applied so state-changing patches (soft delete, restore) still return the
// rows they touched.
func (s *SQLite) UpdateWhere(ctx context.Context, f Filter, p Patch) ([]Record, error) {
	var sets []string
	var args []any
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Body != nil {
		sets = append(sets, "body = ?")
		args = append(args, *p.Body)
	}
	if p.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, *p.Tags)
	}
	if p.UpdatedAt != nil {
		sets = append(sets, "updated_at = ?")
		args = append(args, *p.UpdatedAt)
	}
	switch {
	case p.ClearDeleted:
		sets = append(sets, "deleted_at = NULL")
	case p.DeletedAt != nil:
		sets = append(sets, "deleted_at = ?")
		args = append(args, *p.DeletedAt)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("store: update: empty patch")
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	where, whereArgs := whereClause(f)
	idRows, err := tx.QueryContext(ctx, "SELECT id FROM notes"+where, whereArgs...)
	if err != nil {
		return nil, fmt.Errorf("store: update match: %w", err)
	}
	var ids []string
	for idRows.Next() {
		var id string
		if err := idRows.Scan(&id); err != nil {
			idRows.Close()
			return nil, fmt.Errorf("store: scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := idRows.Err(); err != nil {
		idRows.Close()
		return nil, err
	}
	idRows.Close()

	if len(ids) == 0 {
		return nil, tx.Commit()
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	idArgs := make([]any, len(ids))
	for i, id := range ids {
		idArgs[i] = id
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id IN ("+placeholders+")",
		append(args, idArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("store: update: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		"SELECT "+recordCols+" FROM notes WHERE id IN ("+placeholders+") ORDER BY updated_at DESC, id DESC",
		idArgs...)
	if err != nil {
		return nil, fmt.Errorf("store: reselect: %w", err)
	}
	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	return out, tx.Commit()
}

// DeleteWhere permanently removes matching records and reports how many went.
func (s *SQLite) DeleteWhere(ctx context.Context, f Filter) (int, error) {
	where, args := whereClause(f)
	res, err := s.conn.ExecContext(ctx, "DELETE FROM notes"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("store: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: rows affected: %w", err)
	}
	return int(n), nil
}
