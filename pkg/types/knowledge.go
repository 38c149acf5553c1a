// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// KnowledgeBlock is a curated summary of one paper used to ground the paper
// assistant. It is matched to a record by exact title.
type KnowledgeBlock struct {
	// Title must equal the CatalogRecord.Title it describes, byte for byte.
	Title string `json:"title" yaml:"title"`

	// Summary is a one-paragraph overview.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Methodology describes data and identification strategy.
	Methodology string `json:"methodology" yaml:"methodology"`

	// Findings lists the headline results, including concrete statistics.
	Findings []string `json:"findings" yaml:"findings"`

	// Implications describes what the findings mean for practice and research.
	Implications string `json:"implications" yaml:"implications"`
}

// KnowledgeFile is the on-disk list of knowledge blocks.
type KnowledgeFile struct {
	Blocks []KnowledgeBlock `json:"blocks" yaml:"blocks"`
}
