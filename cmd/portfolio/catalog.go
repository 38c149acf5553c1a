// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/portfolio-engine/internal/catalog"
	"github.com/pdiddy/portfolio-engine/internal/feeds"
	"github.com/pdiddy/portfolio-engine/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List and maintain the record catalogs",
	Long: `Catalog groups the catalog subcommands: list applies the same filter and
sort rules as the site's catalog pages, import-feed appends RSS or Atom items
to a catalog file.`,
}

// --- list subcommand ---

var catalogListCmd = &cobra.Command{
	Use:   "list [name]",
	Short: "Print the visible records of a catalog",
	Long: `List prints the records of the named catalog that pass the type and
topic filters, ordered by date. With no name it prints the catalog names.

For catalogs with groups, --group picks the tab; selecting a topic switches
to the first tab holding a matching record, as the site does.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogList,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	library, err := loadLibrary(cfg.Catalog)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		for _, n := range library.Names() {
			fmt.Fprintln(os.Stdout, n)
		}
		return nil
	}

	cat, err := library.Get(args[0])
	if err != nil {
		return err
	}
	v := catalog.NewView(cat)

	typeFlag, _ := cmd.Flags().GetString("type")
	topic, _ := cmd.Flags().GetString("topic")
	order, _ := cmd.Flags().GetString("sort")
	group, _ := cmd.Flags().GetString("group")
	expanded, _ := cmd.Flags().GetStringSlice("expanded")
	asJSON, _ := cmd.Flags().GetBool("json")

	if typeFlag != "" {
		if err := v.SelectFilter(catalog.FieldType, typeFlag); err != nil {
			return err
		}
	}
	if topic != "" {
		if err := v.SelectFilter(catalog.FieldTopic, topic); err != nil {
			return err
		}
	}
	if err := v.SetSort(types.SortOrder(order)); err != nil {
		return err
	}
	if group != "" {
		if err := v.SelectGroup(group); err != nil {
			return err
		}
	}
	for _, title := range expanded {
		if !v.Expanded().Has(title) {
			v.Toggle(title)
		}
	}

	records := v.Visible()
	if g := v.ActiveGroup(); g != "" {
		records = v.VisibleInGroup(g)
		if !asJSON {
			printTabs(cat, v)
		}
	}

	if asJSON {
		return catalog.FormatJSON(records, os.Stdout)
	}
	catalog.FormatTable(records, v.Expanded(), os.Stdout)
	return nil
}

func printTabs(cat types.Catalog, v *catalog.View) {
	counts := v.TabCounts()
	tabs := make([]string, 0, len(cat.Groups))
	for _, g := range cat.Groups {
		mark := " "
		if g.Key == v.ActiveGroup() {
			mark = "*"
		}
		tabs = append(tabs, fmt.Sprintf("%s%s (%d)", mark, g.Label, counts[g.Key]))
	}
	fmt.Fprintf(os.Stdout, "%s\n\n", strings.Join(tabs, "  "))
}

// --- import-feed subcommand ---

var catalogImportFeedCmd = &cobra.Command{
	Use:   "import-feed <url>",
	Short: "Append RSS or Atom items to a catalog",
	Long: `Import-feed fetches a feed and appends its items to the named catalog as
records of the given type. Item categories that match a catalog topic by key
or label become record topics. Titles already in the catalog are skipped.

The merged catalog is validated and written as YAML to --out (stdout when
empty).`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImportFeed,
}

func runCatalogImportFeed(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("catalog")
	recordType, _ := cmd.Flags().GetString("type")
	topics, _ := cmd.Flags().GetStringSlice("topic")
	maxItems, _ := cmd.Flags().GetInt("max")
	suppress, _ := cmd.Flags().GetBool("suppress-assistant")
	out, _ := cmd.Flags().GetString("out")

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	library, err := loadLibrary(cfg.Catalog)
	if err != nil {
		return err
	}
	cat, err := library.Get(name)
	if err != nil {
		return err
	}

	records, err := feeds.Fetch(context.Background(), args[0], cat.Topics, feeds.Options{
		Type:              recordType,
		Topics:            topics,
		MaxItems:          maxItems,
		SuppressAssistant: suppress,
		UserAgent:         cfg.Gateway.UserAgent,
	})
	if err != nil {
		return err
	}

	merged, summary := feeds.Merge(cat, records, os.Stderr)
	if err := catalog.Validate(merged); err != nil {
		return fmt.Errorf("merged catalog is invalid: %w", err)
	}
	if summary.Added == 0 {
		return nil
	}

	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(merged); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
	}
	return nil
}

func init() {
	catalogListCmd.Flags().String("type", "", "filter by record type (all clears)")
	catalogListCmd.Flags().String("topic", "", "filter by topic key (all clears)")
	catalogListCmd.Flags().String("sort", string(types.SortNewest), "date order: newest or oldest")
	catalogListCmd.Flags().String("group", "", "tab to list for catalogs with groups")
	catalogListCmd.Flags().StringSlice("expanded", nil, "titles whose abstracts are shown")
	catalogListCmd.Flags().Bool("json", false, "output records as JSON")

	catalogImportFeedCmd.Flags().String("catalog", "insights", "catalog to append to")
	catalogImportFeedCmd.Flags().String("type", "article", "record type for imported items")
	catalogImportFeedCmd.Flags().StringSlice("topic", nil, "topic keys added to every item")
	catalogImportFeedCmd.Flags().Int("max", 0, "maximum items to read (0 = all)")
	catalogImportFeedCmd.Flags().Bool("suppress-assistant", true, "hide the assistant on imported records")
	catalogImportFeedCmd.Flags().String("out", "", "file to write the merged catalog to")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogImportFeedCmd)

	rootCmd.AddCommand(catalogCmd)
}
