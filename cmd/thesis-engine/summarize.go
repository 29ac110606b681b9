// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/labthesis/thesis-engine/internal/nlp"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file|->",
	Short: "Summarize a text file",
	Long: `Summarize normalizes the text, segments it into words, truncates it to
the configured word budget and runs the configured summarizer engine. The
summary is printed with all whitespace removed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args[0])
		if err != nil {
			return err
		}
		s, err := newSummarizer()
		if err != nil {
			return err
		}
		summary, err := s.Summarize(cmd.Context(), text)
		if err != nil {
			return err
		}
		fmt.Println(summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

func newSummarizer() (*nlp.Summarizer, error) {
	engine, err := nlp.NewEngine(cfg.NLP, nil)
	if err != nil {
		return nil, err
	}
	seg := nlp.NewSegmenter(cfg.NLP, nil, logger)
	return nlp.NewSummarizer(seg, engine,
		nlp.WithWordBudget(cfg.NLP.WordBudget),
		nlp.WithLogger(logger)), nil
}

// readInput reads a file, or stdin when name is "-".
func readInput(name string) (string, error) {
	var (
		b   []byte
		err error
	)
	if name == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return string(b), nil
}
