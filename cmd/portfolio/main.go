// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the portfolio CLI: the catalog engine,
// the knowledge store, and the paper-chat proxy server.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/portfolio-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir holds per-key credential files.
const secretsDir = ".secrets/"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is built in PersistentPreRunE and synced on exit.
var logger = zap.NewNop()

// rootCmd is the base command for the portfolio CLI.
var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Back end for an academic portfolio site",
	Long: `portfolio serves the catalog pages and the paper assistant of an academic
portfolio site.

The catalog commands filter and sort the publication and insight catalogs the
same way the site does. The knowledge commands manage the curated paper
summaries the assistant is grounded on. serve runs the chat proxy and the
catalog API; chat and prompt exercise the assistant from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l

		s, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./portfolio.yaml or ~/.config/portfolio/portfolio.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log at debug level")
}

func initConfig() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("portfolio")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "portfolio"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("PORTFOLIO")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
