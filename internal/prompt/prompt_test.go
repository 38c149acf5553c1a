// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/portfolio-engine/internal/catalog"
	"github.com/pdiddy/portfolio-engine/internal/content"
	"github.com/pdiddy/portfolio-engine/internal/knowledge"
	"github.com/pdiddy/portfolio-engine/pkg/types"
)

const strategicTitle = "AI-Augmented Decision-Making in Strategic Management"

func defaultComposer(t *testing.T) (*Composer, types.Catalog) {
	t.Helper()
	lib, err := catalog.LoadFS(content.Catalogs())
	require.NoError(t, err)
	pubs, err := lib.Get("publications")
	require.NoError(t, err)
	tbl, err := knowledge.Default()
	require.NoError(t, err)
	return NewComposer(tbl, pubs), pubs
}

func recordByTitle(t *testing.T, c types.Catalog, title string) types.CatalogRecord {
	t.Helper()
	for _, r := range c.Records {
		if r.Title == title {
			return r
		}
	}
	t.Fatalf("no record %q", title)
	return types.CatalogRecord{}
}

func TestPaperKnownTitleEmbedsBlock(t *testing.T) {
	comp, pubs := defaultComposer(t)
	ref := recordByTitle(t, pubs, strategicTitle).PaperRef()

	got, err := comp.Paper(context.Background(), ref)
	require.NoError(t, err)

	assert.Contains(t, got, "Human-AI teams outperformed unaided executives by 23% on realized project ROI.")
	assert.Contains(t, got, "41%")
	assert.Contains(t, got, "Research Summary:")
	assert.Contains(t, got, "Title: "+strategicTitle)
	assert.Contains(t, got, "Research Areas: Artificial Intelligence, Strategic Decisions")
	assert.Contains(t, got, "artificial intelligence applications in business")
	assert.Contains(t, got, LengthPolicy)
	assert.NotContains(t, got, FallbackDisclaimer)
}

func TestPaperUnknownTitleFallsBack(t *testing.T) {
	comp, _ := defaultComposer(t)
	tbl, err := knowledge.Default()
	require.NoError(t, err)

	ref := types.PaperRef{
		Title:      "Cognitive Biases in AI-Assisted Strategic Planning",
		Authors:    "Smith, J.",
		Journal:    "Working Paper",
		Year:       "2024",
		Categories: []string{"ai", "decisions"},
		Status:     "Under Review",
	}
	got, err := comp.Paper(context.Background(), ref)
	require.NoError(t, err)

	assert.Contains(t, got, FallbackDisclaimer)
	assert.Contains(t, got, "Never invent findings")
	assert.Contains(t, got, "Status: Under Review")
	assert.Contains(t, got, "Journal/Status: Working Paper")
	assert.NotContains(t, got, "Research Summary:")

	for _, b := range tbl.Blocks() {
		for _, f := range b.Findings {
			assert.NotContains(t, got, f, "leaked finding from %q", b.Title)
		}
		assert.NotContains(t, got, strings.TrimSpace(b.Methodology))
	}
}

func TestPaperTitleMatchIsExact(t *testing.T) {
	comp, pubs := defaultComposer(t)
	ref := recordByTitle(t, pubs, strategicTitle).PaperRef()
	ref.Title = strings.ToLower(ref.Title)

	got, err := comp.Paper(context.Background(), ref)
	require.NoError(t, err)
	assert.Contains(t, got, FallbackDisclaimer)
	assert.NotContains(t, got, "23%")
}

func TestPaperContextsFollowCategories(t *testing.T) {
	comp, _ := defaultComposer(t)

	tests := []struct {
		name       string
		categories []string
		want       []string
		notWant    []string
	}{
		{
			name:       "entrepreneurship only",
			categories: []string{"entrepreneurship"},
			want:       []string{"venture creation"},
			notWant:    []string{"organizational behavior", "Research Areas: Artificial"},
		},
		{
			name:       "none",
			categories: nil,
			notWant:    []string{"Research Context:"},
		},
		{
			name:       "unknown tag shows key",
			categories: []string{"robotics"},
			want:       []string{"Research Areas: robotics"},
			notWant:    []string{"Research Context:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := comp.Paper(context.Background(), types.PaperRef{Title: "Untitled", Categories: tt.categories})
			require.NoError(t, err)
			for _, s := range tt.want {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestPaperNilSource(t *testing.T) {
	_, pubs := defaultComposer(t)
	comp := NewComposer(nil, pubs)

	got, err := comp.Paper(context.Background(), recordByTitle(t, pubs, strategicTitle).PaperRef())
	require.NoError(t, err)
	assert.Contains(t, got, FallbackDisclaimer)
}

type failingSource struct{}

func (failingSource) Lookup(context.Context, string) (types.KnowledgeBlock, bool, error) {
	return types.KnowledgeBlock{}, false, errors.New("database is locked")
}

func TestPaperSourceError(t *testing.T) {
	comp := NewComposer(failingSource{}, types.Catalog{})
	_, err := comp.Paper(context.Background(), types.PaperRef{Title: "X"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestGeneralListsPublications(t *testing.T) {
	comp, pubs := defaultComposer(t)

	got, err := comp.General()
	require.NoError(t, err)

	assert.Contains(t, got, "1. "+strategicTitle+" (Strategic Management Journal, 2024)")
	assert.Contains(t, got, "- Artificial Intelligence")
	assert.Contains(t, got, "- Entrepreneurship")
	assert.Contains(t, got, "Never claim knowledge of findings")
	assert.Contains(t, got, LengthPolicy)
	for _, r := range pubs.Records {
		assert.Contains(t, got, r.Title)
	}
	assert.NotContains(t, got, "23%")
}
