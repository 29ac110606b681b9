// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/labthesis/thesis-engine/internal/search"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [keywords...]",
	Short: "Search CiNii for articles matching keywords",
	Long: `Scrape sends the keywords to the CiNii academic search engine and prints
the articles found on the first result page. Malformed result items are
skipped and counted.

With --query-file, every query in the file is run in turn and the results
and failed queries are written to --out (default: the query file itself).`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().Bool("json", false, "output results as JSON")
	scrapeCmd.Flags().String("query-file", "", "YAML file listing queries to run as a batch")
	scrapeCmd.Flags().String("out", "", "where to write batch results (default: the query file)")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	client := search.NewClient(cfg.Scrape, logger)

	if queryFile, _ := cmd.Flags().GetString("query-file"); queryFile != "" {
		return runScrapeBatch(cmd, client, queryFile)
	}
	if len(args) == 0 {
		return fmt.Errorf("provide one or more keywords, or --query-file")
	}

	res, err := client.Search(cmd.Context(), args)
	if err != nil {
		return err
	}
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return search.FormatJSON(res, os.Stdout)
	}
	search.FormatTable(res, os.Stdout)
	return nil
}

func runScrapeBatch(cmd *cobra.Command, client *search.Client, queryFile string) error {
	qf, err := search.ReadQueryFile(queryFile)
	if err != nil {
		return err
	}
	if len(qf.Queries) == 0 {
		return fmt.Errorf("no queries in %s", queryFile)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = queryFile
	}

	result, runErr := search.RunBatch(cmd.Context(), client, qf.Queries, cfg.Scrape.InterQueryDelay, os.Stdout)
	if err := search.WriteQueryFile(out, result); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if n := len(result.Failures); n > 0 {
		return fmt.Errorf("%d query(s) failed, see %s", n, out)
	}
	return nil
}
