package query

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/halden/jotter/internal/models"
)

var testNow = time.Date(2026, 8, 25, 15, 0, 0, 0, time.UTC)

func note(title string, created, updated time.Time, tags ...string) models.Note {
	return models.Note{
		ID:        title,
		Title:     title,
		CreatedAt: created,
		UpdatedAt: updated,
		Tags:      tags,
	}
}

func titles(notes []models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}

func TestApply_TextFilter_CaseInsensitive(t *testing.T) {
	notes := []models.Note{
		{Title: "Groceries", Body: "milk and eggs"},
		{Title: "Work", Body: "quarterly REPORT"},
		{Title: "Misc", Body: "nothing here"},
	}

	got := applyAt(notes, Criteria{Search: "report"}, testNow)
	if len(got) != 1 || got[0].Title != "Work" {
		t.Errorf("body match = %v, want [Work]", titles(got))
	}

	got = applyAt(notes, Criteria{Search: "GROC"}, testNow)
	if len(got) != 1 || got[0].Title != "Groceries" {
		t.Errorf("title match = %v, want [Groceries]", titles(got))
	}
}

func TestApply_EmptySearchKeepsEverything(t *testing.T) {
	notes := []models.Note{{Title: "a"}, {Title: "b"}}
	got := applyAt(notes, Criteria{}, testNow)
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestApply_DateFilters(t *testing.T) {
	notes := []models.Note{
		note("today", testNow.Add(-2*time.Hour), testNow),
		note("yesterday", testNow.Add(-26*time.Hour), testNow),
		note("lastweek", testNow.Add(-6*24*time.Hour), testNow),
		note("lastmonth", testNow.Add(-20*24*time.Hour), testNow),
		note("ancient", testNow.Add(-90*24*time.Hour), testNow),
	}

	cases := []struct {
		filter DateFilter
		want   []string
	}{
		{DateAll, []string{"today", "yesterday", "lastweek", "lastmonth", "ancient"}},
		{DateToday, []string{"today"}},
		{DateThisWeek, []string{"today", "yesterday", "lastweek"}},
		{DateThisMonth, []string{"today", "yesterday", "lastweek", "lastmonth"}},
	}
	for _, tc := range cases {
		got := titles(applyAt(notes, Criteria{Date: tc.filter}, testNow))
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("filter %q = %v, want %v", tc.filter, got, tc.want)
		}
	}
}

func TestApply_DateToday_UsesLocalMidnight(t *testing.T) {
	// Created yesterday 23:59 relative to now must be out; 00:01 today is in.
	midnight := time.Date(testNow.Year(), testNow.Month(), testNow.Day(), 0, 0, 0, 0, testNow.Location())
	notes := []models.Note{
		note("before", midnight.Add(-time.Minute), testNow),
		note("after", midnight.Add(time.Minute), testNow),
	}
	got := titles(applyAt(notes, Criteria{Date: DateToday}, testNow))
	if !reflect.DeepEqual(got, []string{"after"}) {
		t.Errorf("today = %v, want [after]", got)
	}
}

func TestApply_ZeroCreatedAt_ExcludedExceptAll(t *testing.T) {
	notes := []models.Note{note("broken", time.Time{}, testNow)}

	if got := applyAt(notes, Criteria{Date: DateAll}, testNow); len(got) != 1 {
		t.Errorf("all should retain malformed timestamps, got %v", titles(got))
	}
	for _, f := range []DateFilter{DateToday, DateThisWeek, DateThisMonth} {
		if got := applyAt(notes, Criteria{Date: f}, testNow); len(got) != 0 {
			t.Errorf("filter %q should exclude malformed timestamps, got %v", f, titles(got))
		}
	}
}

func TestApply_TagFilter_OrSemantics(t *testing.T) {
	notes := []models.Note{
		note("a", testNow, testNow, "work"),
		note("b", testNow, testNow, "home", "urgent"),
		note("c", testNow, testNow, "home"),
		note("d", testNow, testNow),
	}
	got := titles(applyAt(notes, Criteria{Tags: []string{"work", "urgent"}}, testNow))
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("tag filter = %v, want [a b]", got)
	}
}

func TestApply_TaggedOnly(t *testing.T) {
	notes := []models.Note{
		note("tagged", testNow, testNow, "x"),
		note("untagged", testNow, testNow),
	}
	got := titles(applyAt(notes, Criteria{TaggedOnly: true}, testNow))
	if !reflect.DeepEqual(got, []string{"tagged"}) {
		t.Errorf("tagged only = %v, want [tagged]", got)
	}
}

func TestApply_LongNotesOnly_Boundary(t *testing.T) {
	short := models.Note{Title: "short", Body: strings.Repeat("x", 99)}
	long := models.Note{Title: "long", Body: strings.Repeat("x", 100)}

	got := titles(applyAt([]models.Note{short, long}, Criteria{LongNotesOnly: true}, testNow))
	if !reflect.DeepEqual(got, []string{"long"}) {
		t.Errorf("long only = %v, want [long]", got)
	}
}

func TestApply_AlphabeticalAndRecent(t *testing.T) {
	notes := []models.Note{
		note("Zeta", testNow.Add(-3*24*time.Hour), testNow.Add(-3*24*time.Hour)),
		note("Alpha", testNow.Add(-24*time.Hour), testNow),
	}

	got := titles(applyAt(notes, Criteria{SortBy: SortAlphabetical}, testNow))
	if !reflect.DeepEqual(got, []string{"Alpha", "Zeta"}) {
		t.Errorf("alphabetical = %v, want [Alpha Zeta]", got)
	}

	got = titles(applyAt(notes, Criteria{SortBy: SortRecent}, testNow))
	if !reflect.DeepEqual(got, []string{"Alpha", "Zeta"}) {
		t.Errorf("recent = %v, want [Alpha Zeta]", got)
	}
}

func TestApply_SortOldest(t *testing.T) {
	notes := []models.Note{
		note("newer", testNow.Add(-time.Hour), testNow),
		note("older", testNow.Add(-2*time.Hour), testNow),
	}
	got := titles(applyAt(notes, Criteria{SortBy: SortOldest}, testNow))
	if !reflect.DeepEqual(got, []string{"older", "newer"}) {
		t.Errorf("oldest = %v, want [older newer]", got)
	}
}

func TestApply_MostEditedOrdersLikeRecent(t *testing.T) {
	notes := []models.Note{
		note("stale", testNow.Add(-2*time.Hour), testNow.Add(-2*time.Hour)),
		note("fresh", testNow.Add(-2*time.Hour), testNow),
	}
	recent := titles(applyAt(notes, Criteria{SortBy: SortRecent}, testNow))
	edited := titles(applyAt(notes, Criteria{SortBy: SortMostEdited}, testNow))
	if !reflect.DeepEqual(recent, edited) {
		t.Errorf("most_edited = %v, recent = %v, want identical", edited, recent)
	}
}

func TestApply_StableSortPreservesInputOrderOnTies(t *testing.T) {
	same := testNow.Add(-time.Hour)
	notes := []models.Note{
		note("A", same, same),
		note("B", same, same),
		note("C", same, same),
	}
	got := titles(applyAt(notes, Criteria{SortBy: SortRecent}, testNow))
	if !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("tie order = %v, want input order [A B C]", got)
	}
}

func TestApply_Deterministic(t *testing.T) {
	notes := []models.Note{
		note("b", testNow.Add(-time.Hour), testNow.Add(-time.Hour), "x"),
		note("a", testNow.Add(-2*time.Hour), testNow, "y"),
	}
	c := Criteria{SortBy: SortAlphabetical, TaggedOnly: true}
	first := applyAt(notes, c, testNow)
	second := applyAt(notes, c, testNow)
	if !reflect.DeepEqual(first, second) {
		t.Error("apply is not deterministic for identical input")
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	notes := []models.Note{
		note("b", testNow, testNow),
		note("a", testNow, testNow),
	}
	_ = applyAt(notes, Criteria{SortBy: SortAlphabetical}, testNow)
	if notes[0].Title != "b" || notes[1].Title != "a" {
		t.Errorf("input mutated: %v", titles(notes))
	}
}
