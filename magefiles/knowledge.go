//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Knowledge groups the knowledge store targets.
type Knowledge mg.Namespace

// knowledgeDB is the development store.
const knowledgeDB = "data/knowledge.db"

// Store ingests the embedded knowledge blocks into data/knowledge.db.
func (Knowledge) Store() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "knowledge", "store", "--db", knowledgeDB)
}

// Export writes the store back out to data/knowledge.yaml.
func (Knowledge) Export() error {
	mg.Deps(Knowledge.Store)
	if err := sh.RunV(binPath, "knowledge", "export", "--db", knowledgeDB, "--out", "data/knowledge.yaml"); err != nil {
		return err
	}
	fmt.Println("Exported data/knowledge.yaml")
	return nil
}
