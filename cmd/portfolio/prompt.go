// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/portfolio-engine/internal/prompt"
	"github.com/pdiddy/portfolio-engine/pkg/types"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the system prompt the assistant would send",
	Long: `Prompt renders the system instruction for the general research assistant,
or for one paper with --paper. The paper is looked up by exact title in the
publications catalog; an unknown title is rendered with the title alone.`,
	RunE: runPrompt,
}

func runPrompt(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("paper")

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	library, err := loadLibrary(cfg.Catalog)
	if err != nil {
		return err
	}
	pubs, err := library.Get(cfg.Chat.PublicationsCatalog)
	if err != nil {
		return err
	}
	source, closeFn, err := openKnowledge(cfg.Knowledge)
	if err != nil {
		return err
	}
	defer closeFn()

	composer := prompt.NewComposer(source, pubs)
	var text string
	if title == "" {
		text, err = composer.General()
	} else {
		text, err = composer.Paper(context.Background(), paperRef(pubs, title))
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, text)
	return nil
}

// paperRef returns the reference of the record titled title, or a bare
// reference carrying only the title.
func paperRef(c types.Catalog, title string) types.PaperRef {
	for _, r := range c.Records {
		if r.Title == title {
			return r.PaperRef()
		}
	}
	return types.PaperRef{Title: title}
}

func init() {
	promptCmd.Flags().String("paper", "", "exact title of the paper to render the prompt for")

	rootCmd.AddCommand(promptCmd)
}
