// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/portfolio-engine/internal/content"
	"github.com/pdiddy/portfolio-engine/internal/knowledge"
	"github.com/pdiddy/portfolio-engine/pkg/types"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the curated paper summaries (store, show, export)",
	Long: `Knowledge manages the curated research summaries the paper assistant is
grounded on. Blocks are keyed by exact paper title. They live in a YAML file
and can be ingested into a SQLite store that serve reads at request time.`,
}

// --- store subcommand ---

var knowledgeStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest knowledge blocks into the SQLite store",
	Long: `Store reads knowledge blocks from --file (the embedded set when empty) and
upserts them into the database at --db. Blocks whose content is unchanged
are skipped on subsequent runs.`,
	RunE: runKnowledgeStore,
}

func runKnowledgeStore(cmd *cobra.Command, args []string) error {
	cfg, err := knowledgeFlags(cmd)
	if err != nil {
		return err
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("no database configured: pass --db or set knowledge.db_path")
	}

	blocks, err := readBlocks(cfg.File)
	if err != nil {
		return err
	}

	store, err := knowledge.NewStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), blocks, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Total() == 0 {
		fmt.Fprintln(os.Stdout, "No knowledge blocks to ingest.")
	}
	return nil
}

// --- show subcommand ---

var knowledgeShowCmd = &cobra.Command{
	Use:   "show [title]",
	Short: "Print one knowledge block, or every title",
	Long: `Show prints the block for an exact paper title as the assistant sees it.
With no title it lists the known titles. Reads the store when --db is set.`,
	RunE: runKnowledgeShow,
}

func runKnowledgeShow(cmd *cobra.Command, args []string) error {
	cfg, err := knowledgeFlags(cmd)
	if err != nil {
		return err
	}
	source, closeFn, err := openKnowledge(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := context.Background()
	if len(args) == 0 {
		titles, err := listTitles(ctx, source)
		if err != nil {
			return err
		}
		for _, t := range titles {
			fmt.Fprintln(os.Stdout, t)
		}
		fmt.Fprintf(os.Stdout, "\n%d blocks\n", len(titles))
		return nil
	}

	title := strings.Join(args, " ")
	block, ok, err := source.Lookup(ctx, title)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no knowledge block titled %q", title)
	}
	fmt.Fprintln(os.Stdout, block.Title)
	fmt.Fprintln(os.Stdout, strings.Repeat("-", len(block.Title)))
	fmt.Fprintln(os.Stdout, knowledge.Format(block))
	return nil
}

// --- export subcommand ---

var knowledgeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export knowledge blocks to YAML or JSON",
	Long: `Export writes every block from the configured source to stdout or --out.
The YAML output is a knowledge file that --file accepts.`,
	RunE: runKnowledgeExport,
}

func runKnowledgeExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	cfg, err := knowledgeFlags(cmd)
	if err != nil {
		return err
	}
	source, closeFn, err := openKnowledge(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	blocks, err := listBlocks(context.Background(), source)
	if err != nil {
		return err
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

	switch format {
	case "yaml", "":
		err = knowledge.ExportYAML(blocks, w)
	case "json":
		err = knowledge.ExportJSON(blocks, w)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(os.Stderr, "Exported %d blocks to %s\n", len(blocks), out)
	}
	return nil
}

// --- shared helpers ---

// knowledgeFlags overlays --file and --db on the configured settings.
func knowledgeFlags(cmd *cobra.Command) (types.KnowledgeConfig, error) {
	appCfg, err := loadAppConfig()
	if err != nil {
		return types.KnowledgeConfig{}, err
	}
	cfg := appCfg.Knowledge
	if f, _ := cmd.Flags().GetString("file"); f != "" {
		cfg.File = f
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
	}
	return cfg, nil
}

func readBlocks(path string) ([]types.KnowledgeBlock, error) {
	if path == "" {
		return knowledge.Parse(content.Knowledge())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return knowledge.Parse(data)
}

func listTitles(ctx context.Context, source knowledge.Source) ([]string, error) {
	switch s := source.(type) {
	case *knowledge.Store:
		return s.Titles(ctx)
	case *knowledge.Table:
		return s.Titles(), nil
	default:
		return nil, fmt.Errorf("knowledge source %T cannot list titles", source)
	}
}

func listBlocks(ctx context.Context, source knowledge.Source) ([]types.KnowledgeBlock, error) {
	switch s := source.(type) {
	case *knowledge.Store:
		return s.Blocks(ctx)
	case *knowledge.Table:
		return s.Blocks(), nil
	default:
		return nil, fmt.Errorf("knowledge source %T cannot list blocks", source)
	}
}

func init() {
	knowledgeCmd.PersistentFlags().String("file", "", "YAML knowledge file (overrides knowledge.file)")
	knowledgeCmd.PersistentFlags().String("db", "", "SQLite knowledge store (overrides knowledge.db_path)")

	knowledgeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	knowledgeExportCmd.Flags().String("out", "", "file to write (stdout when empty)")

	knowledgeCmd.AddCommand(knowledgeStoreCmd)
	knowledgeCmd.AddCommand(knowledgeShowCmd)
	knowledgeCmd.AddCommand(knowledgeExportCmd)

	rootCmd.AddCommand(knowledgeCmd)
}
