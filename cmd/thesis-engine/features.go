// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/labthesis/thesis-engine/internal/features"
	"github.com/labthesis/thesis-engine/internal/recommend"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Manage lab feature vectors (rebuild, import, export, match)",
	Long: `Features manages the fixed-dimension vectors that summarize each lab's
theses. Vectors are kept in a badger store keyed by lab slug.`,
}

// --- rebuild subcommand ---

var featuresRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute lab vectors from the corpus",
	Long: `Rebuild summarizes every thesis of each lab on a worker pool, hashes the
summaries into a vector and replaces the lab's stored vector in one write.
A thesis whose summarization fails is retried with half the word budget.
A lab whose theses all fail keeps its previous vector.`,
	RunE: runFeaturesRebuild,
}

func runFeaturesRebuild(cmd *cobra.Command, args []string) error {
	slug, _ := cmd.Flags().GetString("lab")

	store, err := openCorpus(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	vectors, err := openFeatures()
	if err != nil {
		return err
	}
	defer vectors.Close()

	summarizer, err := newSummarizer()
	if err != nil {
		return err
	}

	opts := []features.BuilderOption{
		features.WithItemTimeout(cfg.Features.ItemTimeout),
		features.WithBuilderLogger(logger),
	}
	// Zero keeps the builder defaults.
	if cfg.Features.Workers > 0 {
		opts = append(opts, features.WithWorkers(cfg.Features.Workers))
	}
	if cfg.Features.MaxAttempts > 0 {
		opts = append(opts, features.WithMaxAttempts(cfg.Features.MaxAttempts))
	}

	b, err := features.NewBuilder(store, summarizer, extractor(), vectors, opts...)
	if err != nil {
		return err
	}

	report, err := b.Rebuild(cmd.Context(), slug, os.Stdout)
	if err != nil {
		return err
	}
	if n := len(report.Failed); n > 0 {
		return fmt.Errorf("%d lab(s) were not rebuilt", n)
	}
	return nil
}

// --- import subcommand ---

var featuresImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load lab vectors from a JSON file keyed by lab slug",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()

		vectors, err := openFeatures()
		if err != nil {
			return err
		}
		defer vectors.Close()

		n, err := features.ImportJSON(cmd.Context(), vectors, f)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d lab vector(s)\n", n)
		return nil
	},
}

// --- export subcommand ---

var featuresExportCmd = &cobra.Command{
	Use:   "export <file|->",
	Short: "Write lab vectors as a JSON file keyed by lab slug",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vectors, err := openFeatures()
		if err != nil {
			return err
		}
		defer vectors.Close()

		if args[0] == "-" {
			return features.ExportJSON(cmd.Context(), vectors, os.Stdout)
		}
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("creating %s: %w", args[0], err)
		}
		if err := features.ExportJSON(cmd.Context(), vectors, f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

// --- match subcommand ---

var featuresMatchCmd = &cobra.Command{
	Use:   "match <file|->",
	Short: "Rank labs by similarity to a text",
	Long: `Match summarizes the text, extracts its vector and prints every lab with
a stored vector ordered by cosine similarity. Labs without a vector are
left out.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeaturesMatch,
}

func runFeaturesMatch(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		return err
	}

	store, err := openCorpus(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	vectors, err := openFeatures()
	if err != nil {
		return err
	}
	defer vectors.Close()

	summarizer, err := newSummarizer()
	if err != nil {
		return err
	}

	engine := recommend.New(store,
		recommend.WithLabMatching(vectors, summarizer, extractor()),
		recommend.WithLogger(logger))
	scores, err := engine.MatchLabs(cmd.Context(), text)
	if err != nil {
		return err
	}
	if len(scores) == 0 {
		fmt.Println("No lab vectors found. Run \"features rebuild\" first.")
		return nil
	}
	for i, s := range scores {
		fmt.Printf("%2d. %-10s %.4f  %s\n", i+1, s.Slug, s.Score, s.Name)
	}
	return nil
}

func init() {
	featuresRebuildCmd.Flags().String("lab", "", "rebuild only the lab with this slug")

	featuresCmd.AddCommand(featuresRebuildCmd)
	featuresCmd.AddCommand(featuresImportCmd)
	featuresCmd.AddCommand(featuresExportCmd)
	featuresCmd.AddCommand(featuresMatchCmd)
	rootCmd.AddCommand(featuresCmd)
}

func extractor() features.Extractor {
	return features.Extractor{Dim: cfg.Features.Dimension}
}

func openFeatures() (*features.BadgerStore, error) {
	return features.OpenBadgerStore(cfg.Features.StoreDir, extractor().Dimension(), logger)
}
