package notifications

import (
	"strings"
	"time"
)

// DefaultPageLimit caps the number of records a live subscription or
// one-shot fetch pulls from the store.
const DefaultPageLimit = 50

// Filter narrows a notification query. Types, Status and IsRead run
// server-side to bound the result set; the date range and free-text search
// are applied client-side because the store cannot index them.
type Filter struct {
	Types  []Type
	Status *Status
	IsRead *bool
	From   *time.Time
	To     *time.Time
	Search string
	Limit  int
}

// PageLimit returns the effective fetch limit, clamped to DefaultPageLimit.
func (f Filter) PageLimit() int {
	if f.Limit <= 0 || f.Limit > DefaultPageLimit {
		return DefaultPageLimit
	}
	return f.Limit
}

// MatchesIndexed reports whether n passes the server-side conditions.
func (f Filter) MatchesIndexed(n Notification) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if n.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Status != nil && n.Status != *f.Status {
		return false
	}
	if f.IsRead != nil && n.IsRead != *f.IsRead {
		return false
	}
	return true
}

// MatchesRefined reports whether n passes the client-side conditions:
// creation date range and a case-insensitive substring match over title and
// description.
func (f Filter) MatchesRefined(n Notification) bool {
	if f.From != nil && n.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && n.CreatedAt.After(*f.To) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(n.Title), needle) &&
			!strings.Contains(strings.ToLower(n.Description), needle) {
			return false
		}
	}
	return true
}

// Matches reports whether n passes both filter stages.
func (f Filter) Matches(n Notification) bool {
	return f.MatchesIndexed(n) && f.MatchesRefined(n)
}

// Refine applies the client-side stage to an already server-filtered list.
func (f Filter) Refine(items []Notification) []Notification {
	if f.From == nil && f.To == nil && f.Search == "" {
		return items
	}

	out := make([]Notification, 0, len(items))
	for _, n := range items {
		if f.MatchesRefined(n) {
			out = append(out, n)
		}
	}
	return out
}

// Apply runs the full filter over an in-memory list, preserving order.
func (f Filter) Apply(items []Notification) []Notification {
	out := make([]Notification, 0, len(items))
	for _, n := range items {
		if f.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}
