package store

import (
	"context"
	"os"
	"testing"
	"time"
)

func testStore(t *testing.T) *SQLite {
	t.Helper()
	f, err := os.CreateTemp("", "jotter-store-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	st, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestInsert_AssignsIDAndTimestamps(t *testing.T) {
	st := testStore(t)
	rec, err := st.Insert(context.Background(), Record{Title: "hello", Body: "world", Tags: `["a"]`})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if rec.ID == "" {
		t.Error("id not assigned")
	}
	if rec.CreatedAt == "" || rec.UpdatedAt == "" {
		t.Error("timestamps not assigned")
	}
	if rec.CreatedAt != rec.UpdatedAt {
		t.Errorf("created %q != updated %q on insert", rec.CreatedAt, rec.UpdatedAt)
	}
	if rec.DeletedAt != nil {
		t.Error("new record should be active")
	}
	if _, err := time.Parse(time.RFC3339Nano, rec.CreatedAt); err != nil {
		t.Errorf("created_at not RFC3339: %v", err)
	}
}

func TestSelect_FiltersByDeletedState(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	a, _ := st.Insert(ctx, Record{Title: "active"})
	b, _ := st.Insert(ctx, Record{Title: "trashed"})

	now := FormatTime(time.Now())
	if _, err := st.UpdateWhere(ctx, Filter{ID: b.ID}, Patch{DeletedAt: &now}); err != nil {
		t.Fatalf("UpdateWhere: %v", err)
	}

	active, err := st.Select(ctx, Active(), Order{Field: OrderUpdatedAt, Desc: true})
	if err != nil {
		t.Fatalf("Select active: %v", err)
	}
	if len(active) != 1 || active[0].ID != a.ID {
		t.Errorf("active = %+v, want only %s", active, a.ID)
	}

	deleted, err := st.Select(ctx, Deleted(), Order{Field: OrderDeletedAt, Desc: true})
	if err != nil {
		t.Fatalf("Select deleted: %v", err)
	}
	if len(deleted) != 1 || deleted[0].ID != b.ID {
		t.Errorf("deleted = %+v, want only %s", deleted, b.ID)
	}
	if deleted[0].DeletedAt == nil {
		t.Error("deleted record missing deleted_at")
	}
}

func TestSelect_ByID(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	rec, _ := st.Insert(ctx, Record{Title: "one"})
	_, _ = st.Insert(ctx, Record{Title: "two"})

	got, err := st.Select(ctx, Filter{ID: rec.ID}, Order{})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 1 || got[0].Title != "one" {
		t.Errorf("by id = %+v, want one record titled 'one'", got)
	}

	got, err = st.Select(ctx, Filter{ID: "nope"}, Order{})
	if err != nil {
		t.Fatalf("Select unknown: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("unknown id matched %d records", len(got))
	}
}

func TestSelect_OrderByUpdatedAtDesc(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	first, _ := st.Insert(ctx, Record{Title: "first"})
	time.Sleep(2 * time.Millisecond)
	second, _ := st.Insert(ctx, Record{Title: "second"})

	got, err := st.Select(ctx, Active(), Order{Field: OrderUpdatedAt, Desc: true})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 2 || got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("order = [%s %s], want [%s %s]", got[0].ID, got[1].ID, second.ID, first.ID)
	}
}

// Fractional seconds of different widths must not reorder results: ".5" as
// text sorts after ".52" even though it is earlier. TimeLayout pads to nine
// digits so the TEXT columns compare chronologically.
func TestSelect_OrderSurvivesFractionWidths(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	earlier := FormatTime(base.Add(500 * time.Millisecond))
	later := FormatTime(base.Add(520 * time.Millisecond))

	a, _ := st.Insert(ctx, Record{Title: "earlier"})
	b, _ := st.Insert(ctx, Record{Title: "later"})
	if _, err := st.UpdateWhere(ctx, Filter{ID: a.ID}, Patch{UpdatedAt: &earlier, DeletedAt: &earlier}); err != nil {
		t.Fatalf("UpdateWhere: %v", err)
	}
	if _, err := st.UpdateWhere(ctx, Filter{ID: b.ID}, Patch{UpdatedAt: &later, DeletedAt: &later}); err != nil {
		t.Fatalf("UpdateWhere: %v", err)
	}

	got, err := st.Select(ctx, Filter{}, Order{Field: OrderUpdatedAt, Desc: true})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 2 || got[0].ID != b.ID || got[1].ID != a.ID {
		t.Errorf("updated_at desc = [%s %s], want [%s %s]", got[0].Title, got[1].Title, "later", "earlier")
	}

	got, err = st.Select(ctx, Deleted(), Order{Field: OrderDeletedAt, Desc: true})
	if err != nil {
		t.Fatalf("Select deleted: %v", err)
	}
	if len(got) != 2 || got[0].ID != b.ID || got[1].ID != a.ID {
		t.Errorf("deleted_at desc = [%s %s], want [%s %s]", got[0].Title, got[1].Title, "later", "earlier")
	}
}

func TestFormatTime_FixedWidth(t *testing.T) {
	whole := FormatTime(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	frac := FormatTime(time.Date(2026, 1, 1, 0, 0, 0, 500000000, time.UTC))
	if len(whole) != len(frac) {
		t.Errorf("widths differ: %q vs %q", whole, frac)
	}
	if _, err := time.Parse(time.RFC3339Nano, frac); err != nil {
		t.Errorf("not parseable as RFC 3339: %v", err)
	}
}

func TestUpdateWhere_ReturnsRowsItTouched(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	rec, _ := st.Insert(ctx, Record{Title: "old"})

	// Soft delete through an active-state filter: after the patch the row no
	// longer matches the filter, but it must still be returned.
	now := FormatTime(time.Now())
	f := ActiveByID(rec.ID)
	got, err := st.UpdateWhere(ctx, f, Patch{DeletedAt: &now})
	if err != nil {
		t.Fatalf("UpdateWhere: %v", err)
	}
	if len(got) != 1 || got[0].DeletedAt == nil {
		t.Fatalf("updated = %+v, want one soft-deleted record", got)
	}
}

func TestUpdateWhere_NoMatchIsNotAnError(t *testing.T) {
	st := testStore(t)
	title := "x"
	got, err := st.UpdateWhere(context.Background(), Filter{ID: "ghost"}, Patch{Title: &title})
	if err != nil {
		t.Fatalf("UpdateWhere: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("matched %d records, want 0", len(got))
	}
}

func TestUpdateWhere_ClearDeleted(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	rec, _ := st.Insert(ctx, Record{Title: "t"})
	now := FormatTime(time.Now())
	_, _ = st.UpdateWhere(ctx, Filter{ID: rec.ID}, Patch{DeletedAt: &now})

	got, err := st.UpdateWhere(ctx, DeletedByID(rec.ID), Patch{ClearDeleted: true})
	if err != nil {
		t.Fatalf("UpdateWhere: %v", err)
	}
	if len(got) != 1 || got[0].DeletedAt != nil {
		t.Errorf("restore = %+v, want active record", got)
	}
}

func TestUpdateWhere_EmptyPatchFails(t *testing.T) {
	st := testStore(t)
	if _, err := st.UpdateWhere(context.Background(), Filter{}, Patch{}); err == nil {
		t.Error("empty patch should fail")
	}
}

func TestDeleteWhere_Counts(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	rec, _ := st.Insert(ctx, Record{Title: "a"})
	_, _ = st.Insert(ctx, Record{Title: "b"})

	n, err := st.DeleteWhere(ctx, Filter{ID: rec.ID})
	if err != nil {
		t.Fatalf("DeleteWhere: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}

	n, err = st.DeleteWhere(ctx, Filter{})
	if err != nil {
		t.Fatalf("DeleteWhere all: %v", err)
	}
	if n != 1 {
		t.Errorf("delete all removed %d, want 1 remaining record", n)
	}

	left, _ := st.Select(ctx, Filter{}, Order{})
	if len(left) != 0 {
		t.Errorf("%d records left after delete all", len(left))
	}
}
