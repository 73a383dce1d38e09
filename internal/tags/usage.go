// Package tags derives tag usage aggregation from an in-memory note collection.
package tags

import "github.com/halden/jotter/internal/models"

// Usage returns, for each tag, the number of active notes carrying it.
// A tag repeated within a single note counts once; soft-deleted notes
// contribute nothing. Tags are compared case-sensitively and counted
// as stored, even when they exceed the UI caps.
func Usage(notes []models.Note) map[string]int {
	out := make(map[string]int)
	for _, n := range notes {
		if !n.Active() {
			continue
		}
		seen := make(map[string]struct{}, len(n.Tags))
		for _, tag := range n.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out[tag]++
		}
	}
	return out
}
