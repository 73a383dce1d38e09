// Package query turns a note collection plus user criteria into the exact
// ordered list a user sees. Apply is a pure function: it never mutates its
// input, never fails, and is re-run in full on every criteria change.
package query

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/halden/jotter/internal/models"
)

// DateFilter restricts notes by creation time relative to the current
// wall clock.
type DateFilter string

const (
	DateAll       DateFilter = "all"
	DateToday     DateFilter = "today"
	DateThisWeek  DateFilter = "week"
	DateThisMonth DateFilter = "month"
)

// SortOption selects the final ordering.
type SortOption string

const (
	SortRecent       SortOption = "recent"
	SortAlphabetical SortOption = "alphabetical"
	SortOldest       SortOption = "oldest"
	// SortMostEdited orders like SortRecent: no per-note edit count is
	// tracked, so updated_at recency is the closest available signal.
	SortMostEdited SortOption = "most_edited"
)

// LongNoteMinChars is the body length threshold for the long-notes filter.
const LongNoteMinChars = 100

// Criteria is the combined search/filter/sort state. The zero value keeps
// every note and sorts by recency.
type Criteria struct {
	// Search keeps notes whose title or body contains this string,
	// case-insensitively. Empty means no text filtering.
	Search string
	// Date restricts by creation time; empty behaves like DateAll.
	Date DateFilter
	// Tags, when non-empty, keeps notes whose tag set intersects it
	// (OR semantics).
	Tags []string
	// TaggedOnly keeps only notes with at least one tag.
	TaggedOnly bool
	// LongNotesOnly keeps only notes with a body of LongNoteMinChars or more.
	LongNotesOnly bool
	// SortBy selects the final ordering; empty behaves like SortRecent.
	SortBy SortOption
}

// Apply filters and sorts notes per the criteria against the current wall
// clock. Ties in any sort preserve the input order.
func Apply(notes []models.Note, c Criteria) []models.Note {
	return applyAt(notes, c, time.Now())
}

// applyAt is Apply with an explicit clock. Stage order is fixed for
// determinism: text, date, tags, tagged-only, length, then a stable sort.
func applyAt(notes []models.Note, c Criteria, now time.Time) []models.Note {
	search := strings.ToLower(c.Search)
	selected := tagSet(c.Tags)

	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if search != "" && !matchesText(n, search) {
			continue
		}
		if !matchesDate(n, c.Date, now) {
			continue
		}
		if len(selected) > 0 && !hasAnyTag(n, selected) {
			continue
		}
		if c.TaggedOnly && len(n.Tags) == 0 {
			continue
		}
		if c.LongNotesOnly && utf8.RuneCountInString(n.Body) < LongNoteMinChars {
			continue
		}
		out = append(out, n)
	}

	sortNotes(out, c.SortBy)
	return out
}

func matchesText(n models.Note, search string) bool {
	return strings.Contains(strings.ToLower(n.Title), search) ||
		strings.Contains(strings.ToLower(n.Body), search)
}

// matchesDate evaluates created_at against the filter. A zero created_at
// (malformed upstream timestamp) is excluded from date-filtered results but
// retained under DateAll.
func matchesDate(n models.Note, f DateFilter, now time.Time) bool {
	switch f {
	case "", DateAll:
		return true
	}
	if n.CreatedAt.IsZero() {
		return false
	}
	switch f {
	case DateToday:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return !n.CreatedAt.Before(midnight)
	case DateThisWeek:
		return !n.CreatedAt.Before(now.Add(-7 * 24 * time.Hour))
	case DateThisMonth:
		return !n.CreatedAt.Before(now.Add(-30 * 24 * time.Hour))
	default:
		// Unknown filter values keep everything rather than failing.
		return true
	}
}

func tagSet(tags []string) map[string]struct{} {
	if len(tags) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

func hasAnyTag(n models.Note, selected map[string]struct{}) bool {
	for _, t := range n.Tags {
		if _, ok := selected[t]; ok {
			return true
		}
	}
	return false
}

func sortNotes(notes []models.Note, by SortOption) {
	switch by {
	case SortAlphabetical:
		coll := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(notes, func(i, j int) bool {
			return coll.CompareString(notes[i].Title, notes[j].Title) < 0
		})
	case SortOldest:
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].CreatedAt.Before(notes[j].CreatedAt)
		})
	default:
		// SortRecent, SortMostEdited and anything unknown: updated_at
		// descending.
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
		})
	}
}
