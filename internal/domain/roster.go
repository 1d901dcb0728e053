package domain

import "strings"

// Roster is the ordered, deduplicated list of principals attached to an
// event. The owner is always present and always first.
type Roster []string

// NormalizeRoster builds a canonical roster from raw entries: whitespace is
// trimmed, empty entries dropped, duplicates removed keeping the first
// occurrence, and the owner placed at the front. Normalizing an already
// canonical roster yields the same roster.
func NormalizeRoster(owner string, entries []string) Roster {
	owner = strings.TrimSpace(owner)
	r := Roster{owner}
	seen := map[string]struct{}{owner: {}}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		r = append(r, entry)
	}
	return r
}

// Contains reports whether principal is on the roster.
func (r Roster) Contains(principal string) bool {
	for _, p := range r {
		if p == principal {
			return true
		}
	}
	return false
}

// Join returns the roster with principal appended. The second return is
// false when the principal was already present and the roster is unchanged.
func (r Roster) Join(principal string) (Roster, bool) {
	if r.Contains(principal) {
		return r, false
	}
	out := make(Roster, len(r), len(r)+1)
	copy(out, r)
	return append(out, principal), true
}

// Leave returns the roster with principal removed. The second return is
// false when the principal was not present and the roster is unchanged.
func (r Roster) Leave(principal string) (Roster, bool) {
	if !r.Contains(principal) {
		return r, false
	}
	out := make(Roster, 0, len(r)-1)
	for _, p := range r {
		if p != principal {
			out = append(out, p)
		}
	}
	return out, true
}
