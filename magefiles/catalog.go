//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Catalog groups the catalog targets.
type Catalog mg.Namespace

// Check loads every embedded catalog and prints each one, failing on the
// first catalog that does not validate.
func (Catalog) Check() error {
	mg.Deps(Build)
	names, err := sh.Output(binPath, "catalog", "list")
	if err != nil {
		return err
	}
	for _, name := range splitLines([]byte(names)) {
		if name == "" {
			continue
		}
		if err := sh.RunV(binPath, "catalog", "list", name); err != nil {
			return err
		}
	}
	return nil
}
