// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/labthesis/thesis-engine/internal/catalog"
	"github.com/labthesis/thesis-engine/internal/corpus"
	"github.com/labthesis/thesis-engine/internal/recommend"
	"github.com/labthesis/thesis-engine/internal/textnorm"
	"github.com/labthesis/thesis-engine/pkg/types"
)

const (
	listTitleWidth = 60
	excerptRunes   = 80
)

// --- search subcommand ---

var searchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search the thesis corpus",
	Long: `Search ranks theses by TF-IDF similarity to the keyword. Without a
keyword, lab or field every thesis is listed in id order. --field
restricts matching to the title or the body.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var p catalog.Params
	if len(args) > 0 {
		p.Keyword = args[0]
	}
	p.Lab, _ = cmd.Flags().GetString("lab")
	p.Field, _ = cmd.Flags().GetString("field")
	p.Page, _ = cmd.Flags().GetString("page")

	return printView(cmd, svc.Search(cmd.Context(), p))
}

// --- show subcommand ---

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a thesis and theses similar to it",
	Long: `Show prints a thesis with one page of similar theses and counts the
access toward the popular listing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, store, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer store.Close()
		page, _ := cmd.Flags().GetString("page")
		return printView(cmd, svc.Show(cmd.Context(), args[0], page))
	},
}

// --- recommend subcommand ---

var recommendCmd = &cobra.Command{
	Use:   "recommend <id>",
	Short: "List theses similar to a thesis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, store, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer store.Close()
		page, _ := cmd.Flags().GetString("page")
		return printView(cmd, svc.Recommend(cmd.Context(), args[0], page))
	},
}

// --- popular subcommand ---

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List the most accessed theses",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, store, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer store.Close()
		return printView(cmd, svc.Popular(cmd.Context()))
	},
}

func init() {
	searchCmd.Flags().String("lab", "", "restrict to a lab id")
	searchCmd.Flags().String("field", "", "match only the title or the body")
	for _, c := range []*cobra.Command{searchCmd, showCmd, recommendCmd} {
		c.Flags().String("page", "1", "result page")
	}
	for _, c := range []*cobra.Command{searchCmd, showCmd, recommendCmd, popularCmd} {
		c.Flags().Bool("json", false, "output as JSON")
		rootCmd.AddCommand(c)
	}
}

func openCatalog(cmd *cobra.Command) (*catalog.Service, *corpus.Store, error) {
	store, err := openCorpus(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	engine := recommend.New(store, recommend.WithLogger(logger))
	svc := catalog.New(store, engine,
		catalog.WithPageSize(store.PageSize()),
		catalog.WithPopularCount(cfg.Corpus.PopularCount),
		catalog.WithLogger(logger))
	return svc, store, nil
}

func printView(cmd *cobra.Command, v catalog.View) error {
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	w := os.Stdout
	for _, n := range v.Notices {
		fmt.Fprintf(w, "! %s\n", n)
	}
	if v.Thesis != nil {
		printThesis(w, *v.Thesis)
	}
	if v.Results.Items != nil {
		printPage(w, v.Results)
	}
	if len(v.Popular) > 0 {
		fmt.Fprintln(w, "\nPopular:")
		for i, t := range v.Popular {
			fmt.Fprintf(w, "%2d. [%d] %s (%d views)\n", i+1, t.ID,
				runewidth.Truncate(t.Title, listTitleWidth, "..."), t.Access)
		}
	}
	return nil
}

func printThesis(w io.Writer, t types.Thesis) {
	fmt.Fprintf(w, "[%d] %s\n", t.ID, t.Title)
	if t.Author != "" || t.Year != 0 {
		fmt.Fprintf(w, "    %s %d\n", t.Author, t.Year)
	}
	if t.URL != "" {
		fmt.Fprintf(w, "    %s\n", t.URL)
	}
	fmt.Fprintf(w, "    %s\n\n", textnorm.Excerpt(oneLine(t.Body), excerptRunes*3))
}

func printPage(w io.Writer, p types.Page) {
	if len(p.Items) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}
	fmt.Fprintf(w, "%-6s  %s  %s\n", "ID", runewidth.FillRight("Title", listTitleWidth), "Score")
	fmt.Fprintln(w, strings.Repeat("-", 6+2+listTitleWidth+2+6))
	for _, it := range p.Items {
		fmt.Fprintf(w, "%-6d  %s  %.3f\n", it.ID,
			runewidth.FillRight(runewidth.Truncate(it.Title, listTitleWidth, "..."), listTitleWidth),
			it.Score)
		fmt.Fprintf(w, "        %s\n", textnorm.Excerpt(oneLine(it.Body), excerptRunes))
	}
	fmt.Fprintf(w, "\npage %d of %d (%d theses)\n", p.Page, p.Pages(), p.Total)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
