// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package content embeds the default catalogs and knowledge blocks so the
// binary runs without a data directory.
package content

import (
	"embed"
	"io/fs"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

//go:embed knowledge.yaml
var knowledgeYAML []byte

// Catalogs returns the embedded catalog files rooted at the catalogs directory.
func Catalogs() fs.FS {
	sub, err := fs.Sub(catalogFS, "catalogs")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory exists
	}
	return sub
}

// Knowledge returns the embedded knowledge file.
func Knowledge() []byte {
	return knowledgeYAML
}
