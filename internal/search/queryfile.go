// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// QueryFile is the on-disk form of a batch scrape: the queries to run and,
// after a run, their results and the queries that failed.
type QueryFile struct {
	Queries  [][]string     `yaml:"queries"`
	Results  []Result       `yaml:"results,omitempty"`
	Failures []BatchFailure `yaml:"failures,omitempty"`
	Summary  *BatchSummary  `yaml:"summary,omitempty"`
}

// BatchFailure records a query that failed so it can be rerun by hand.
type BatchFailure struct {
	Query  []string `yaml:"query"`
	URL    string   `yaml:"url,omitempty"`
	Status int      `yaml:"status,omitempty"`
	Error  string   `yaml:"error"`
}

// BatchSummary holds run statistics and a timestamp.
type BatchSummary struct {
	Queries   int       `yaml:"queries"`
	Articles  int       `yaml:"articles"`
	Skipped   int       `yaml:"skipped"`
	Failed    int       `yaml:"failed"`
	Timestamp time.Time `yaml:"timestamp"`
}

// Searcher runs one query. *Client implements it.
type Searcher interface {
	Search(ctx context.Context, keywords []string) (Result, error)
}

// RunBatch runs queries one after another, pausing delay between them, and
// collects failures instead of stopping. Progress is written to w. Only
// context cancellation ends the run early.
func RunBatch(ctx context.Context, s Searcher, queries [][]string, delay time.Duration, w io.Writer) (QueryFile, error) {
	out := QueryFile{Queries: queries}
	summary := BatchSummary{Queries: len(queries)}

	for i, q := range queries {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		label := strings.Join(q, " ")
		res, err := s.Search(ctx, q)
		if err != nil {
			f := BatchFailure{Query: q, URL: res.URL, Error: err.Error()}
			var fe *FetchError
			if errors.As(err, &fe) {
				f.Status = fe.Status
			}
			out.Failures = append(out.Failures, f)
			summary.Failed++
			fmt.Fprintf(w, "failed  %q: %v\n", label, err)
			continue
		}
		out.Results = append(out.Results, res)
		summary.Articles += len(res.Articles)
		summary.Skipped += res.Skipped
		fmt.Fprintf(w, "scraped %q (%d articles, %d skipped)\n", label, len(res.Articles), res.Skipped)
	}

	summary.Timestamp = time.Now()
	out.Summary = &summary
	fmt.Fprintf(w, "\nqueries: %d, articles: %d, skipped: %d, failed: %d\n",
		summary.Queries, summary.Articles, summary.Skipped, summary.Failed)
	return out, nil
}

// WriteQueryFile saves a batch run to a YAML file.
func WriteQueryFile(path string, qf QueryFile) error {
	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}
