// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog loads record catalogs and computes the visible, ordered
// subset for a view's filter selections.
//
// Records are injected (from YAML files or the embedded defaults); nothing in
// this package holds global catalog state.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/portfolio-engine/pkg/types"
)

var (
	// ErrUnknownValue reports a filter value outside the catalog's vocabulary.
	// It signals a caller bug, not a user error.
	ErrUnknownValue = errors.New("unknown filter value")

	// ErrUnknownField reports a filter field other than type or topic.
	ErrUnknownField = errors.New("unknown filter field")

	// ErrUnknownSort reports a sort order other than newest or oldest.
	ErrUnknownSort = errors.New("unknown sort order")

	// ErrNotFound reports a catalog name missing from a Library.
	ErrNotFound = errors.New("catalog not found")
)

// Parse decodes a YAML catalog and validates it.
func Parse(data []byte) (types.Catalog, error) {
	var c types.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return types.Catalog{}, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := Validate(c); err != nil {
		return types.Catalog{}, err
	}
	return c, nil
}

// Validate checks the catalog's invariants: a name, non-empty unique titles,
// every record type in the type enumeration, every category a known topic,
// and every group declared.
func Validate(c types.Catalog) error {
	if c.Name == "" {
		return fmt.Errorf("catalog has no name")
	}
	if len(c.Types) == 0 {
		return fmt.Errorf("catalog %s: no record types declared", c.Name)
	}

	var problems []string
	titles := make(map[string]bool, len(c.Records))
	for i, r := range c.Records {
		switch {
		case r.Title == "":
			problems = append(problems, fmt.Sprintf("record %d: empty title", i))
		case titles[r.Title]:
			problems = append(problems, fmt.Sprintf("record %d: duplicate title %q", i, r.Title))
		}
		titles[r.Title] = true

		if !hasType(c, r.Type) {
			problems = append(problems, fmt.Sprintf("record %d: type %q not in enumeration", i, r.Type))
		}
		for _, cat := range r.Categories {
			if !hasTopic(c, cat) {
				problems = append(problems, fmt.Sprintf("record %d: unknown topic %q", i, cat))
			}
		}
		if r.Group != "" && !hasGroup(c, r.Group) {
			problems = append(problems, fmt.Sprintf("record %d: unknown group %q", i, r.Group))
		}
		if r.Date != "" {
			if _, ok := r.SortKey(); !ok {
				problems = append(problems, fmt.Sprintf("record %d: bad date %q", i, r.Date))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("catalog %s: %s", c.Name, strings.Join(problems, "; "))
	}
	return nil
}

// TopicLabel returns the display label for a topic key, or the key itself.
func TopicLabel(c types.Catalog, key string) string {
	for _, t := range c.Topics {
		if t.Key == key && t.Label != "" {
			return t.Label
		}
	}
	return key
}

// TopicContexts returns the prompt context sentence for each topic in keys
// that declares one, in the catalog's topic order.
func TopicContexts(c types.Catalog, keys []string) []string {
	var out []string
	for _, t := range c.Topics {
		if t.Context == "" {
			continue
		}
		for _, k := range keys {
			if k == t.Key {
				out = append(out, t.Context)
				break
			}
		}
	}
	return out
}

func hasType(c types.Catalog, v string) bool {
	for _, t := range c.Types {
		if t.Value == v {
			return true
		}
	}
	return false
}

func hasTopic(c types.Catalog, k string) bool {
	for _, t := range c.Topics {
		if t.Key == k {
			return true
		}
	}
	return false
}

func hasGroup(c types.Catalog, k string) bool {
	for _, g := range c.Groups {
		if g.Key == k {
			return true
		}
	}
	return false
}

// Library holds every loaded catalog keyed by name.
type Library struct {
	catalogs map[string]types.Catalog
}

// NewLibrary builds a Library from already-validated catalogs.
func NewLibrary(cats ...types.Catalog) (*Library, error) {
	l := &Library{catalogs: make(map[string]types.Catalog, len(cats))}
	for _, c := range cats {
		if _, dup := l.catalogs[c.Name]; dup {
			return nil, fmt.Errorf("duplicate catalog name %q", c.Name)
		}
		l.catalogs[c.Name] = c
	}
	return l, nil
}

// LoadFS parses every *.yaml file at the root of fsys.
func LoadFS(fsys fs.FS) (*Library, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading catalog directory: %w", err)
	}

	var cats []types.Catalog
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		c, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		cats = append(cats, c)
	}
	return NewLibrary(cats...)
}

// LoadDir parses every *.yaml file in dir.
func LoadDir(dir string) (*Library, error) {
	return LoadFS(os.DirFS(dir))
}

// Get returns the named catalog.
func (l *Library) Get(name string) (types.Catalog, error) {
	c, ok := l.catalogs[name]
	if !ok {
		return types.Catalog{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c, nil
}

// Names returns the catalog names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.catalogs))
	for n := range l.catalogs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
