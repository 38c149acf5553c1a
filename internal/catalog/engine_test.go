// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/portfolio-engine/pkg/types"
)

func loadFixture(t *testing.T) types.Catalog {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "fixture.yaml"))
	require.NoError(t, err)
	c, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, c.Records, 14)
	return c
}

func titles(records []types.CatalogRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}
	return out
}

func TestComputeVisiblePaperAndAI(t *testing.T) {
	c := loadFixture(t)

	tests := []struct {
		name string
		sort types.SortOrder
		want []string
	}{
		{"newest", types.SortNewest, []string{"R08", "R01", "R11", "R05", "R14"}},
		{"oldest", types.SortOldest, []string{"R05", "R01", "R11", "R08", "R14"}},
		{"empty sort defaults to newest", "", []string{"R08", "R01", "R11", "R05", "R14"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeVisible(c.Records, types.FilterState{Type: "paper", Topic: "AI", Sort: tt.sort})
			if diff := cmp.Diff(tt.want, titles(got)); diff != "" {
				t.Errorf("visible titles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeVisibleOnlyMatchingSubset(t *testing.T) {
	c := loadFixture(t)

	byTitle := make(map[string]types.CatalogRecord, len(c.Records))
	for _, r := range c.Records {
		byTitle[r.Title] = r
	}

	states := []types.FilterState{
		{},
		{Type: "paper"},
		{Topic: "Innovation"},
		{Type: "podcast", Topic: "AI"},
		{Type: "article", Topic: "Innovation"},
		{Type: "paper", Topic: "Entrepreneurship", Sort: types.SortOldest},
	}

	for _, st := range states {
		got := ComputeVisible(c.Records, st)
		seen := make(map[string]bool)
		for _, r := range got {
			orig, ok := byTitle[r.Title]
			require.True(t, ok, "synthesized record %q", r.Title)
			assert.False(t, seen[r.Title], "duplicate record %q", r.Title)
			seen[r.Title] = true
			assert.Equal(t, orig, r)
			if st.Type != "" {
				assert.Equal(t, st.Type, r.Type)
			}
			if st.Topic != "" {
				assert.Contains(t, r.Categories, st.Topic)
			}
		}

		count := 0
		for _, r := range c.Records {
			if Matches(r, st) {
				count++
			}
		}
		assert.Len(t, got, count, "state %+v", st)
	}
}

func TestComputeVisibleNoFilterKeepsAll(t *testing.T) {
	c := loadFixture(t)
	got := ComputeVisible(c.Records, types.FilterState{})
	assert.Len(t, got, 14)
	// R13 sorts by its year alone; R14 has no date at all and trails.
	assert.Equal(t, "R02", got[0].Title)
	assert.Equal(t, "R13", got[11].Title)
	assert.Equal(t, "R03", got[12].Title)
	assert.Equal(t, "R14", got[13].Title)
}

func TestComputeVisibleDateOrdering(t *testing.T) {
	records := []types.CatalogRecord{
		{Title: "a", Type: "paper", Date: "2024-01-15"},
		{Title: "b", Type: "paper", Date: "2025-10-10"},
		{Title: "c", Type: "paper", Date: "2012-06-01"},
	}

	dates := func(rs []types.CatalogRecord) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.Date
		}
		return out
	}

	newest := ComputeVisible(records, types.FilterState{Sort: types.SortNewest})
	assert.Equal(t, []string{"2025-10-10", "2024-01-15", "2012-06-01"}, dates(newest))

	oldest := ComputeVisible(records, types.FilterState{Sort: types.SortOldest})
	assert.Equal(t, []string{"2012-06-01", "2024-01-15", "2025-10-10"}, dates(oldest))
}

func TestComputeVisibleIdempotent(t *testing.T) {
	c := loadFixture(t)
	st := types.FilterState{Topic: "AI", Sort: types.SortOldest}

	first := ComputeVisible(c.Records, st)
	second := ComputeVisible(c.Records, st)
	assert.Equal(t, first, second)
}

func TestComputeVisibleDoesNotMutateInput(t *testing.T) {
	records := []types.CatalogRecord{
		{Title: "old", Type: "paper", Date: "2001-01-01", Categories: []string{"AI"}},
		{Title: "new", Type: "paper", Date: "2020-01-01", Categories: []string{"AI"}},
	}

	got := ComputeVisible(records, types.FilterState{})
	require.Len(t, got, 2)
	got[0].Categories[0] = "changed"
	got[0].Title = "changed"

	assert.Equal(t, "old", records[0].Title, "input order must be preserved")
	assert.Equal(t, "AI", records[1].Categories[0], "output must not alias input slices")
}

func TestComputeVisibleEmpty(t *testing.T) {
	got := ComputeVisible(nil, types.FilterState{Type: "paper"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestToggleExpansion(t *testing.T) {
	orig := NewExpandedSet("A")

	once := ToggleExpansion(orig, "B")
	assert.True(t, once.Has("B"))
	assert.False(t, orig.Has("B"), "original set must not change")

	twice := ToggleExpansion(once, "B")
	assert.True(t, twice.Equal(orig))
	assert.Equal(t, []string{"A"}, twice.Titles())

	removed := ToggleExpansion(orig, "A")
	assert.Equal(t, 0, removed.Len())
	assert.True(t, orig.Has("A"))

	var zero ExpandedSet
	assert.True(t, ToggleExpansion(zero, "x").Has("x"))
}

func TestTabCounts(t *testing.T) {
	c := loadFixture(t)

	all := TabCounts(c.Records, types.FilterState{}, c.Groups)
	assert.Equal(t, map[string]int{"published": 4, "working": 3}, all)

	ai := TabCounts(c.Records, types.FilterState{Topic: "AI"}, c.Groups)
	assert.Equal(t, map[string]int{"published": 2, "working": 2}, ai)
}

func TestPreferredGroup(t *testing.T) {
	c := loadFixture(t)

	tests := []struct {
		topic string
		want  string
	}{
		{"AI", "published"},
		{"Entrepreneurship", "published"},
		{"", ""},
		{"Nonexistent", ""},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, PreferredGroup(c.Records, tt.topic, c.Groups))
		})
	}

	workingOnly := []types.CatalogRecord{
		{Title: "w", Group: "working", Categories: []string{"Innovation"}},
	}
	assert.Equal(t, "working", PreferredGroup(workingOnly, "Innovation", c.Groups))
}
