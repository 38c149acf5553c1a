// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"fmt"
	"strings"

	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// Field names a filterable attribute of a view.
type Field string

const (
	FieldType  Field = "type"
	FieldTopic Field = "topic"
)

// AllValue selects every record for a field; selecting it clears the filter.
const AllValue = "all"

// View is the state of one catalog page: the injected catalog, the current
// filter selections, the expanded abstracts, and the active tab. A View is
// created fresh per page view and is not safe for concurrent use.
type View struct {
	catalog  types.Catalog
	state    types.FilterState
	expanded ExpandedSet
	group    string
}

// NewView returns a view over c with no filters, newest-first ordering, and
// the first declared group active.
func NewView(c types.Catalog) *View {
	v := &View{catalog: c}
	v.Reset()
	return v
}

// Reset restores the initial state.
func (v *View) Reset() {
	v.state = types.FilterState{Sort: types.SortNewest}
	v.expanded = ExpandedSet{}
	v.group = ""
	if len(v.catalog.Groups) > 0 {
		v.group = v.catalog.Groups[0].Key
	}
}

// Catalog returns the catalog the view was built over.
func (v *View) Catalog() types.Catalog { return v.catalog }

// State returns a copy of the current filter state.
func (v *View) State() types.FilterState { return v.state }

// SelectFilter sets exactly one field. AllValue clears it. A value outside
// the catalog's vocabulary returns ErrUnknownValue and leaves the state as it
// was. Selecting a topic switches the active group to the first one that
// holds a record with that topic.
func (v *View) SelectFilter(field Field, value string) error {
	if strings.EqualFold(value, AllValue) {
		return v.ClearFilter(field)
	}

	switch field {
	case FieldType:
		if !hasType(v.catalog, value) {
			return fmt.Errorf("%w: type %q in catalog %s", ErrUnknownValue, value, v.catalog.Name)
		}
		v.state.Type = value
	case FieldTopic:
		if !hasTopic(v.catalog, value) {
			return fmt.Errorf("%w: topic %q in catalog %s", ErrUnknownValue, value, v.catalog.Name)
		}
		v.state.Topic = value
		if g := PreferredGroup(v.catalog.Records, value, v.catalog.Groups); g != "" {
			v.group = g
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// ClearFilter removes the filter on field.
func (v *View) ClearFilter(field Field) error {
	switch field {
	case FieldType:
		v.state.Type = ""
	case FieldTopic:
		v.state.Topic = ""
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// SetSort sets the date ordering.
func (v *View) SetSort(order types.SortOrder) error {
	switch order {
	case types.SortNewest, types.SortOldest:
		v.state.Sort = order
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSort, order)
	}
}

// Visible returns the ordered records passing the current filters across
// all groups.
func (v *View) Visible() []types.CatalogRecord {
	return ComputeVisible(v.catalog.Records, v.state)
}

// VisibleInGroup returns the visible records listed under group.
func (v *View) VisibleInGroup(group string) []types.CatalogRecord {
	var in []types.CatalogRecord
	for _, r := range v.catalog.Records {
		if r.Group == group {
			in = append(in, r)
		}
	}
	return ComputeVisible(in, v.state)
}

// SelectGroup makes group the active tab.
func (v *View) SelectGroup(group string) error {
	if !hasGroup(v.catalog, group) {
		return fmt.Errorf("%w: group %q in catalog %s", ErrUnknownValue, group, v.catalog.Name)
	}
	v.group = group
	return nil
}

// ActiveGroup returns the active tab, or "" for catalogs without groups.
func (v *View) ActiveGroup() string { return v.group }

// TabCounts returns the visible count per group under the current filters.
func (v *View) TabCounts() map[string]int {
	return TabCounts(v.catalog.Records, v.state, v.catalog.Groups)
}

// Toggle flips the abstract expansion of title.
func (v *View) Toggle(title string) {
	v.expanded = ToggleExpansion(v.expanded, title)
}

// Expanded returns the current expansion set.
func (v *View) Expanded() ExpandedSet { return v.expanded }
