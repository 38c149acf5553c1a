// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// ExportYAML writes blocks as a knowledge file that Parse can read back.
func ExportYAML(blocks []types.KnowledgeBlock, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(types.KnowledgeFile{Blocks: blocks}); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes blocks as an indented JSON knowledge file.
func ExportJSON(blocks []types.KnowledgeBlock, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(types.KnowledgeFile{Blocks: blocks}); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
