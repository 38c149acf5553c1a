// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the portfolio engine:
// catalog records and their filter state, chat messages and the wire form of
// a paper, knowledge blocks, and configuration.
package types

import (
	"strconv"
	"time"
)

// dateLayout is the on-disk format of CatalogRecord.Date.
const dateLayout = "2006-01-02"

// Link is one external link shown with a record (SSRN, journal page, episode).
type Link struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// CatalogRecord is one publication or curated-insight entry.
type CatalogRecord struct {
	// Title identifies the record within its catalog. It is the only key used
	// for abstract expansion and for knowledge lookup.
	Title string `json:"title" yaml:"title"`

	// Authors is a free-text author line (e.g. "Smith, J. & Johnson, A.").
	Authors string `json:"authors" yaml:"authors"`

	// Venue is the journal, outlet, or lifecycle text (e.g. "Working Paper").
	Venue string `json:"venue" yaml:"venue"`

	// Year is the display year. Used as a sort key when Date is empty.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// Date is an optional full date in YYYY-MM-DD format.
	Date string `json:"date,omitempty" yaml:"date,omitempty"`

	// Categories are non-exclusive topic tags.
	Categories []string `json:"categories" yaml:"categories"`

	// Type is exactly one value from the catalog's type enumeration.
	Type string `json:"type" yaml:"type"`

	// Status is a display-only lifecycle label ("Under Review", "R&R").
	Status string `json:"status,omitempty" yaml:"status,omitempty"`

	// Abstract is optional long-form text.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Links lists external links in display order.
	Links []Link `json:"links,omitempty" yaml:"links,omitempty"`

	// SuppressAssistant hides the "ask AI" entry point for this record.
	SuppressAssistant bool `json:"suppress_assistant,omitempty" yaml:"suppress_assistant,omitempty"`

	// Group is the tab the record is listed under (e.g. "working").
	Group string `json:"group,omitempty" yaml:"group,omitempty"`
}

// HasAbstract reports whether the expand-abstract control applies.
func (r CatalogRecord) HasAbstract() bool {
	return r.Abstract != ""
}

// AssistantEnabled reports whether the record offers the paper assistant.
func (r CatalogRecord) AssistantEnabled() bool {
	return !r.SuppressAssistant
}

// HasCategory reports whether topic is one of the record's categories.
func (r CatalogRecord) HasCategory(topic string) bool {
	for _, c := range r.Categories {
		if c == topic {
			return true
		}
	}
	return false
}

// SortKey returns the instant the record is ordered by. Date wins over Year;
// ok is false when neither parses.
func (r CatalogRecord) SortKey() (time.Time, bool) {
	if r.Date != "" {
		if t, err := time.Parse(dateLayout, r.Date); err == nil {
			return t, true
		}
	}
	if len(r.Year) == 4 {
		if y, err := strconv.Atoi(r.Year); err == nil {
			return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Clone returns a copy that shares no slices with r.
func (r CatalogRecord) Clone() CatalogRecord {
	c := r
	if r.Categories != nil {
		c.Categories = append(make([]string, 0, len(r.Categories)), r.Categories...)
	}
	if r.Links != nil {
		c.Links = append(make([]Link, 0, len(r.Links)), r.Links...)
	}
	return c
}

// PaperRef returns the wire form sent to the paper assistant.
func (r CatalogRecord) PaperRef() PaperRef {
	year := r.Year
	if year == "" && len(r.Date) >= 4 {
		year = r.Date[:4]
	}
	return PaperRef{
		Title:      r.Title,
		Authors:    r.Authors,
		Journal:    r.Venue,
		Year:       year,
		Categories: append([]string{}, r.Categories...),
		Status:     r.Status,
	}
}

// TypeOption is one value of a catalog's closed type enumeration.
type TypeOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// TopicOption is one known topic tag and its display label.
type TopicOption struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`

	// Context is an optional sentence added to the paper assistant prompt
	// for records tagged with this topic.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
}

// GroupOption is one tab of a catalog view.
type GroupOption struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// Catalog is a named record set together with its vocabularies.
type Catalog struct {
	Name    string          `json:"name" yaml:"name"`
	Types   []TypeOption    `json:"types" yaml:"types"`
	Topics  []TopicOption   `json:"topics" yaml:"topics"`
	Groups  []GroupOption   `json:"groups,omitempty" yaml:"groups,omitempty"`
	Records []CatalogRecord `json:"records" yaml:"records"`
}

// SortOrder selects the date ordering of visible records.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// FilterState is the user's current selection for one catalog view. An empty
// Type or Topic means no filter on that field.
type FilterState struct {
	Type  string    `json:"type,omitempty" yaml:"type,omitempty"`
	Topic string    `json:"topic,omitempty" yaml:"topic,omitempty"`
	Sort  SortOrder `json:"sort,omitempty" yaml:"sort,omitempty"`
}
