// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"sort"
	"time"

	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// ComputeVisible returns the records that satisfy both active predicates of
// state, ordered by date. An empty Type or Topic disables that predicate.
//
// Ordering is stable: records with equal dates keep their input order, and
// records without a usable date follow all dated records. Any Sort other than
// SortOldest orders newest first. The returned records are copies; the input
// slice is never modified.
func ComputeVisible(records []types.CatalogRecord, state types.FilterState) []types.CatalogRecord {
	type keyed struct {
		rec   types.CatalogRecord
		at    time.Time
		dated bool
	}

	matched := make([]keyed, 0, len(records))
	for _, r := range records {
		if !Matches(r, state) {
			continue
		}
		at, ok := r.SortKey()
		matched = append(matched, keyed{rec: r.Clone(), at: at, dated: ok})
	}

	oldest := state.Sort == types.SortOldest
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.dated != b.dated {
			return a.dated
		}
		if !a.dated {
			return false
		}
		if oldest {
			return a.at.Before(b.at)
		}
		return a.at.After(b.at)
	})

	visible := make([]types.CatalogRecord, len(matched))
	for i, k := range matched {
		visible[i] = k.rec
	}
	return visible
}

// Matches reports whether r passes the type and topic predicates of state.
func Matches(r types.CatalogRecord, state types.FilterState) bool {
	if state.Type != "" && r.Type != state.Type {
		return false
	}
	if state.Topic != "" && !r.HasCategory(state.Topic) {
		return false
	}
	return true
}

// TabCounts returns, for each declared group, how many records are visible
// under state.
func TabCounts(records []types.CatalogRecord, state types.FilterState, groups []types.GroupOption) map[string]int {
	counts := make(map[string]int, len(groups))
	for _, g := range groups {
		counts[g.Key] = 0
	}
	for _, r := range records {
		if _, ok := counts[r.Group]; ok && Matches(r, state) {
			counts[r.Group]++
		}
	}
	return counts
}

// PreferredGroup returns the first group, in declared order, holding a record
// tagged with topic. It returns "" when topic is empty or no group matches.
func PreferredGroup(records []types.CatalogRecord, topic string, groups []types.GroupOption) string {
	if topic == "" {
		return ""
	}
	for _, g := range groups {
		for _, r := range records {
			if r.Group == g.Key && r.HasCategory(topic) {
				return g.Key
			}
		}
	}
	return ""
}

// ExpandedSet is an immutable set of record titles whose abstracts are shown.
// The zero value is an empty set.
type ExpandedSet struct {
	titles map[string]struct{}
}

// NewExpandedSet returns a set holding titles.
func NewExpandedSet(titles ...string) ExpandedSet {
	s := ExpandedSet{titles: make(map[string]struct{}, len(titles))}
	for _, t := range titles {
		s.titles[t] = struct{}{}
	}
	return s
}

// Has reports whether title is expanded.
func (s ExpandedSet) Has(title string) bool {
	_, ok := s.titles[title]
	return ok
}

// Len returns the number of expanded titles.
func (s ExpandedSet) Len() int {
	return len(s.titles)
}

// Titles returns the expanded titles in sorted order.
func (s ExpandedSet) Titles() []string {
	out := make([]string, 0, len(s.titles))
	for t := range s.titles {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold the same titles.
func (s ExpandedSet) Equal(o ExpandedSet) bool {
	if len(s.titles) != len(o.titles) {
		return false
	}
	for t := range s.titles {
		if !o.Has(t) {
			return false
		}
	}
	return true
}

// ToggleExpansion returns a new set with key's membership flipped; s itself
// is never modified.
func ToggleExpansion(s ExpandedSet, key string) ExpandedSet {
	next := ExpandedSet{titles: make(map[string]struct{}, len(s.titles)+1)}
	for t := range s.titles {
		next.titles[t] = struct{}{}
	}
	if _, ok := next.titles[key]; ok {
		delete(next.titles, key)
	} else {
		next.titles[key] = struct{}{}
	}
	return next
}
