// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/portfolio-engine/pkg/types"
)

// FormatTable writes records as a human-readable table to w. Abstracts of
// titles in expanded are printed under their row.
func FormatTable(records []types.CatalogRecord, expanded ExpandedSet, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-55s  %-8s  %-10s  %-25s  %s\n",
		"#", "Title", "Type", "Date", "Venue", "Topics")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, r := range records {
		date := r.Date
		if date == "" {
			date = r.Year
		}
		fmt.Fprintf(w, "%-4d  %-55s  %-8s  %-10s  %-25s  %s\n",
			i+1, truncate(r.Title, 55), r.Type, date, truncate(r.Venue, 25),
			strings.Join(r.Categories, ","))
		if r.HasAbstract() && expanded.Has(r.Title) {
			fmt.Fprintf(w, "      %s\n", r.Abstract)
		}
	}

	fmt.Fprintf(w, "\n%d records\n", len(records))
}

// FormatJSON writes records as indented JSON to w.
func FormatJSON(records []types.CatalogRecord, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
