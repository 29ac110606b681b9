// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/labthesis/thesis-engine/internal/corpus"
	"github.com/labthesis/thesis-engine/internal/labs"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the thesis corpus (import, export)",
	Long: `Corpus manages the local SQLite store of theses and labs that search,
show and recommend read from.`,
}

// --- import subcommand ---

var corpusImportCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import thesis records from a directory tree",
	Long: `Import walks dir for YAML thesis records. The lab of each record comes
from its lab field or, failing that, from the first lab pattern matching its
path. Index pages and paths that are not thesis files are skipped. Records
with an existing path are updated in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runCorpusImport,
}

func runCorpusImport(cmd *cobra.Command, args []string) error {
	dir, err := labs.NewDirectory(cfg.Labs)
	if err != nil {
		return err
	}
	store, err := openCorpus(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Import(cmd.Context(), args[0], dir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed import", summary.Failed)
	}
	return nil
}

// --- export subcommand ---

var corpusExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the corpus to YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		store, err := openCorpus(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Export(cmd.Context(), os.Stdout, format)
	},
}

func init() {
	corpusExportCmd.Flags().String("format", corpus.FormatYAML, "export format: yaml or json")

	corpusCmd.AddCommand(corpusImportCmd)
	corpusCmd.AddCommand(corpusExportCmd)
	rootCmd.AddCommand(corpusCmd)
}

// openCorpus opens the store and makes sure the configured labs exist.
func openCorpus(ctx context.Context) (*corpus.Store, error) {
	dir, err := labs.NewDirectory(cfg.Labs)
	if err != nil {
		return nil, err
	}
	store, err := corpus.NewStore(cfg.Corpus, corpus.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := store.SyncLabs(ctx, dir.Labs()); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
