// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package features

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/labthesis/thesis-engine/internal/textnorm"
	"github.com/labthesis/thesis-engine/pkg/types"
)

// ThesisSource lists labs and their theses.
type ThesisSource interface {
	Labs(ctx context.Context) ([]types.Lab, error)
	ThesesByLab(ctx context.Context, labID int64) ([]types.Thesis, error)
}

// Summarizer summarizes text within a token budget.
type Summarizer interface {
	SummarizeBudget(ctx context.Context, text string, words int) (string, error)
	WordBudget() int
}

// ItemFailure reports a thesis whose summary could not be produced.
type ItemFailure struct {
	Lab      string `json:"lab" yaml:"lab"`
	ThesisID int64  `json:"thesis_id" yaml:"thesis_id"`
	Attempts int    `json:"attempts" yaml:"attempts"`
	Input    string `json:"input" yaml:"input"`
	Error    string `json:"error" yaml:"error"`
}

// LabFailure reports a lab whose vector was not rebuilt. Its stored
// vector, if any, is unchanged.
type LabFailure struct {
	Lab   string `json:"lab" yaml:"lab"`
	Error string `json:"error" yaml:"error"`
}

// RebuildReport summarizes one rebuild run.
type RebuildReport struct {
	RunID        string        `json:"run_id" yaml:"run_id"`
	Built        []string      `json:"built" yaml:"built"`
	Failed       []LabFailure  `json:"failed,omitempty" yaml:"failed,omitempty"`
	ItemFailures []ItemFailure `json:"item_failures,omitempty" yaml:"item_failures,omitempty"`
}

// Builder recomputes lab feature vectors from the corpus.
type Builder struct {
	source      ThesisSource
	summarizer  Summarizer
	extractor   Extractor
	store       Store
	workers     int
	itemTimeout time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// WithWorkers sets the worker pool size.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) error {
		if n < 1 {
			return fmt.Errorf("workers must be at least 1, got %d", n)
		}
		b.workers = n
		return nil
	}
}

// WithItemTimeout bounds the summarization of a single thesis.
func WithItemTimeout(d time.Duration) BuilderOption {
	return func(b *Builder) error {
		b.itemTimeout = d
		return nil
	}
}

// WithMaxAttempts sets how often a thesis is tried. Each retry halves the
// word budget.
func WithMaxAttempts(n int) BuilderOption {
	return func(b *Builder) error {
		if n < 1 {
			return fmt.Errorf("max attempts must be at least 1, got %d", n)
		}
		b.maxAttempts = n
		return nil
	}
}

// WithBuilderLogger sets the logger.
func WithBuilderLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) error {
		if l != nil {
			b.logger = l
		}
		return nil
	}
}

// NewBuilder creates a Builder.
func NewBuilder(source ThesisSource, summarizer Summarizer, extractor Extractor, store Store, opts ...BuilderOption) (*Builder, error) {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	b := &Builder{
		source:      source,
		summarizer:  summarizer,
		extractor:   extractor,
		store:       store,
		workers:     workers,
		maxAttempts: 3,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Rebuild recomputes the vectors of every lab, or only of the lab with the
// given slug when slug is non-empty. Each lab is written with one Put once
// all of its theses have been tried; a lab with no successful summary
// keeps its previous vector. Progress is written to w.
func (b *Builder) Rebuild(ctx context.Context, slug string, w io.Writer) (RebuildReport, error) {
	report := RebuildReport{RunID: uuid.NewString()}
	logger := b.logger.With("run", report.RunID)

	labs, err := b.source.Labs(ctx)
	if err != nil {
		return report, fmt.Errorf("listing labs: %w", err)
	}
	if slug != "" {
		labs = filterLab(labs, slug)
		if len(labs) == 0 {
			return report, &types.ValidationError{Param: "lab", Value: slug}
		}
	}

	pool, err := ants.NewPool(b.workers)
	if err != nil {
		return report, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	logger.Info("feature rebuild started", "labs", len(labs), "workers", b.workers)
	for _, lab := range labs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		items, err := b.rebuildLab(ctx, pool, lab, logger)
		report.ItemFailures = append(report.ItemFailures, items...)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed = append(report.Failed, LabFailure{Lab: lab.Slug, Error: err.Error()})
			fmt.Fprintf(w, "failed  %s: %v\n", lab.Slug, err)
			logger.Warn("lab vector not rebuilt", "lab", lab.Slug, "error", err)
			continue
		}
		report.Built = append(report.Built, lab.Slug)
		fmt.Fprintf(w, "built   %s (%d item failures)\n", lab.Slug, len(items))
	}

	fmt.Fprintf(w, "\nrun %s: built: %d, failed: %d, item failures: %d\n",
		report.RunID, len(report.Built), len(report.Failed), len(report.ItemFailures))
	logger.Info("feature rebuild finished",
		"built", len(report.Built), "failed", len(report.Failed), "item_failures", len(report.ItemFailures))
	return report, nil
}

func filterLab(labs []types.Lab, slug string) []types.Lab {
	for _, l := range labs {
		if l.Slug == slug {
			return []types.Lab{l}
		}
	}
	return nil
}

type itemResult struct {
	summary string
	failure *ItemFailure
}

func (b *Builder) rebuildLab(ctx context.Context, pool *ants.Pool, lab types.Lab, logger *slog.Logger) ([]ItemFailure, error) {
	theses, err := b.source.ThesesByLab(ctx, lab.ID)
	if err != nil {
		return nil, fmt.Errorf("listing theses: %w", err)
	}
	if len(theses) == 0 {
		return nil, ErrEmptyCorpus
	}

	results := make([]itemResult, len(theses))
	var wg sync.WaitGroup
	for i, t := range theses {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			results[i] = b.summarizeItem(ctx, lab, t, logger)
		})
		if err != nil {
			wg.Done()
			results[i] = itemResult{failure: &ItemFailure{
				Lab: lab.Slug, ThesisID: t.ID, Error: fmt.Sprintf("submitting: %v", err),
			}}
		}
	}
	wg.Wait()

	var (
		summaries []string
		failures  []ItemFailure
	)
	for _, r := range results {
		if r.failure != nil {
			failures = append(failures, *r.failure)
			continue
		}
		summaries = append(summaries, r.summary)
	}
	if err := ctx.Err(); err != nil {
		return failures, err
	}
	if len(summaries) == 0 {
		return failures, fmt.Errorf("all %d theses failed to summarize", len(theses))
	}

	vec, err := b.extractor.Extract(summaries)
	if err != nil {
		return failures, fmt.Errorf("extracting features: %w", err)
	}
	if err := b.store.Put(ctx, lab.Slug, vec); err != nil {
		return failures, err
	}
	return failures, nil
}

// summarizeItem tries a thesis up to maxAttempts times, halving the word
// budget after each failure.
func (b *Builder) summarizeItem(ctx context.Context, lab types.Lab, t types.Thesis, logger *slog.Logger) itemResult {
	budget := b.summarizer.WordBudget()
	var lastErr error
	attempts := 0
	for attempts < b.maxAttempts && budget > 0 {
		if ctx.Err() != nil {
			break
		}
		attempts++
		summary, err := b.summarizeOnce(ctx, t.Body, budget)
		if err == nil {
			return itemResult{summary: summary}
		}
		lastErr = err
		logger.Debug("summary attempt failed",
			"lab", lab.Slug, "thesis", t.ID, "attempt", attempts, "budget", budget, "error", err)
		budget /= 2
	}
	if lastErr == nil {
		lastErr = errors.Join(ctx.Err(), errors.New("not attempted"))
	}
	logger.Warn("thesis skipped",
		"lab", lab.Slug, "thesis", t.ID, "attempts", attempts, "error", lastErr)
	return itemResult{failure: &ItemFailure{
		Lab:      lab.Slug,
		ThesisID: t.ID,
		Attempts: attempts,
		Input:    textnorm.Excerpt(t.Body, 200),
		Error:    lastErr.Error(),
	}}
}

func (b *Builder) summarizeOnce(ctx context.Context, text string, budget int) (string, error) {
	if b.itemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.itemTimeout)
		defer cancel()
	}
	return b.summarizer.SummarizeBudget(ctx, text, budget)
}
