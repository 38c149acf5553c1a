// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/portfolio-engine/pkg/types"
)

const strategicTitle = "AI-Augmented Decision-Making in Strategic Management"

func sampleBlocks() []types.KnowledgeBlock {
	return []types.KnowledgeBlock{
		{
			Title:        "Paper One",
			Summary:      "First summary.",
			Methodology:  "Survey of 100 firms.",
			Findings:     []string{"Finding A raised output by 12%.", "Finding B."},
			Implications: "Managers should care.",
		},
		{
			Title:        "Paper Two",
			Methodology:  "Field experiment.",
			Findings:     []string{"Only finding."},
			Implications: "Policy relevance.",
		},
	}
}

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "index", "knowledge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDefaultTable(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)
	assert.Len(t, tbl.Titles(), 3)

	b, ok, err := tbl.Lookup(context.Background(), strategicTitle)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, Format(b), "23%")
}

func TestTableLookupIsExact(t *testing.T) {
	tbl, err := NewTable(sampleBlocks())
	require.NoError(t, err)

	tests := []struct {
		title string
		want  bool
	}{
		{"Paper One", true},
		{"paper one", false},
		{"Paper One ", false},
		{"Paper", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			_, ok, err := tbl.Lookup(context.Background(), tt.title)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestNewTableRejectsBadTitles(t *testing.T) {
	_, err := NewTable([]types.KnowledgeBlock{{Title: "A"}, {Title: "A"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate title")

	_, err = NewTable([]types.KnowledgeBlock{{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty title")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.yaml")
	var buf bytes.Buffer
	require.NoError(t, ExportYAML(sampleBlocks(), &buf))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	tbl, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleBlocks(), tbl.Blocks())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	out := Format(sampleBlocks()[0])
	assert.Contains(t, out, "Summary: First summary.")
	assert.Contains(t, out, "Methodology: Survey of 100 firms.")
	assert.Contains(t, out, "- Finding A raised output by 12%.")
	assert.Contains(t, out, "Implications: Managers should care.")

	noSummary := Format(sampleBlocks()[1])
	assert.NotContains(t, noSummary, "Summary:")
}

func TestStoreIngestAndLookup(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var buf bytes.Buffer
	summary, err := s.Ingest(ctx, sampleBlocks(), &buf)
	require.NoError(t, err)
	assert.Equal(t, IngestSummary{Inserted: 2}, summary)
	assert.Contains(t, buf.String(), "inserted  Paper One")

	b, ok, err := s.Lookup(ctx, "Paper One")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleBlocks()[0], b)

	_, ok, err = s.Lookup(ctx, "paper one")
	require.NoError(t, err)
	assert.False(t, ok)

	titles, err := s.Titles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paper One", "Paper Two"}, titles)
}

func TestStoreIngestIncremental(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Ingest(ctx, sampleBlocks(), &bytes.Buffer{})
	require.NoError(t, err)

	again, err := s.Ingest(ctx, sampleBlocks(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, IngestSummary{Unchanged: 2}, again)

	changed := sampleBlocks()
	changed[1].Findings = append(changed[1].Findings, "New finding.")
	changed = append(changed, types.KnowledgeBlock{Title: "Paper Three", Methodology: "m", Implications: "i"})

	summary, err := s.Ingest(ctx, changed, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, IngestSummary{Inserted: 1, Updated: 1, Unchanged: 1}, summary)
	assert.Equal(t, 3, summary.Total())

	b, ok, err := s.Lookup(ctx, "Paper Two")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Only finding.", "New finding."}, b.Findings)
}

func TestStoreIngestRejectsDuplicates(t *testing.T) {
	s := testStore(t)
	blocks := append(sampleBlocks(), sampleBlocks()[0])

	_, err := s.Ingest(context.Background(), blocks, &bytes.Buffer{})
	require.Error(t, err)

	titles, err := s.Titles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, titles)
}

func TestStoreExportRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := s.Ingest(ctx, sampleBlocks(), &bytes.Buffer{})
	require.NoError(t, err)

	blocks, err := s.Blocks(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportYAML(blocks, &buf))
	parsed, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, sampleBlocks(), parsed)
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(sampleBlocks()[:1], &buf))
	assert.Contains(t, buf.String(), `"title": "Paper One"`)
}
