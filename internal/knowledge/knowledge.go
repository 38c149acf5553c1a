// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge provides the paper knowledge blocks that ground the
// paper assistant. Blocks are keyed by exact record title: a renamed record
// no longer matches and the assistant falls back to metadata-only mode.
package knowledge

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/portfolio-engine/internal/content"
	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// Source looks up the knowledge block for a paper title. Implementations
// match titles byte for byte; no case folding or whitespace normalisation.
type Source interface {
	Lookup(ctx context.Context, title string) (types.KnowledgeBlock, bool, error)
}

// Table is an in-memory, read-only Source.
type Table struct {
	blocks map[string]types.KnowledgeBlock
}

// NewTable builds a Table. Empty or repeated titles are rejected.
func NewTable(blocks []types.KnowledgeBlock) (*Table, error) {
	t := &Table{blocks: make(map[string]types.KnowledgeBlock, len(blocks))}
	for i, b := range blocks {
		if b.Title == "" {
			return nil, fmt.Errorf("knowledge block %d: empty title", i)
		}
		if _, dup := t.blocks[b.Title]; dup {
			return nil, fmt.Errorf("knowledge block %d: duplicate title %q", i, b.Title)
		}
		t.blocks[b.Title] = b
	}
	return t, nil
}

// Lookup returns the block whose title equals title exactly.
func (t *Table) Lookup(_ context.Context, title string) (types.KnowledgeBlock, bool, error) {
	b, ok := t.blocks[title]
	return b, ok, nil
}

// Titles returns every title in sorted order.
func (t *Table) Titles() []string {
	out := make([]string, 0, len(t.blocks))
	for title := range t.blocks {
		out = append(out, title)
	}
	sort.Strings(out)
	return out
}

// Blocks returns every block ordered by title.
func (t *Table) Blocks() []types.KnowledgeBlock {
	out := make([]types.KnowledgeBlock, 0, len(t.blocks))
	for _, title := range t.Titles() {
		out = append(out, t.blocks[title])
	}
	return out
}

// Parse decodes a YAML knowledge file.
func Parse(data []byte) ([]types.KnowledgeBlock, error) {
	var f types.KnowledgeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing knowledge file: %w", err)
	}
	return f.Blocks, nil
}

// LoadFile reads a YAML knowledge file into a Table.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge file %s: %w", path, err)
	}
	blocks, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return NewTable(blocks)
}

// Default returns the Table built from the embedded knowledge file.
func Default() (*Table, error) {
	blocks, err := Parse(content.Knowledge())
	if err != nil {
		return nil, err
	}
	return NewTable(blocks)
}

// Format renders a block as the plain-text section embedded in prompts.
func Format(b types.KnowledgeBlock) string {
	var sb strings.Builder
	if b.Summary != "" {
		fmt.Fprintf(&sb, "Summary: %s\n", strings.TrimSpace(b.Summary))
	}
	fmt.Fprintf(&sb, "Methodology: %s\n", strings.TrimSpace(b.Methodology))
	sb.WriteString("Key Findings:\n")
	for _, f := range b.Findings {
		fmt.Fprintf(&sb, "- %s\n", strings.TrimSpace(f))
	}
	fmt.Fprintf(&sb, "Implications: %s\n", strings.TrimSpace(b.Implications))
	return sb.String()
}
