// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend ranks theses similar to a given thesis and labs
// similar to a given text.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/labthesis/thesis-engine/internal/corpus"
	"github.com/labthesis/thesis-engine/internal/similarity"
	"github.com/labthesis/thesis-engine/pkg/types"
)

// Corpus is the part of the corpus store the engine reads.
type Corpus interface {
	Index(ctx context.Context) (*similarity.Index, error)
	HitPage(ctx context.Context, hits []similarity.Hit, page, pageSize int) (types.Page, error)
	Labs(ctx context.Context) ([]types.Lab, error)
}

// VectorSource returns stored lab vectors keyed by slug.
type VectorSource interface {
	All(ctx context.Context) (map[string]types.FeatureVector, error)
}

// Summarizer condenses raw text before feature extraction.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Extractor turns summaries into a feature vector.
type Extractor interface {
	Extract(summaries []string) (types.FeatureVector, error)
}

// Engine answers "more like this" and lab matching queries.
type Engine struct {
	corpus     Corpus
	vectors    VectorSource
	summarizer Summarizer
	extractor  Extractor
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLabMatching enables MatchLabs with the given collaborators.
func WithLabMatching(vectors VectorSource, summarizer Summarizer, extractor Extractor) Option {
	return func(e *Engine) {
		e.vectors = vectors
		e.summarizer = summarizer
		e.extractor = extractor
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine over a corpus.
func New(c Corpus, opts ...Option) *Engine {
	e := &Engine{corpus: c, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MoreLikeThis ranks the other theses by body similarity to thesisID,
// highest first with ties broken by id. Theses with no similarity at all
// are left out. An unknown id yields corpus.ErrNotFound.
func (e *Engine) MoreLikeThis(ctx context.Context, thesisID int64, page, pageSize int) (types.Page, error) {
	ix, err := e.corpus.Index(ctx)
	if err != nil {
		return types.Page{}, err
	}
	hits, ok := ix.Similar(thesisID)
	if !ok {
		return types.Page{}, fmt.Errorf("thesis %d: %w", thesisID, corpus.ErrNotFound)
	}
	return e.corpus.HitPage(ctx, hits, page, pageSize)
}

// MatchLabs summarizes text, extracts its feature vector and scores it by
// cosine similarity against every lab with a stored vector. Labs without a
// vector, or whose vector has a different dimension, are omitted. Results
// are ordered by score descending, then lab id.
func (e *Engine) MatchLabs(ctx context.Context, text string) ([]types.LabScore, error) {
	if e.vectors == nil || e.summarizer == nil || e.extractor == nil {
		return nil, fmt.Errorf("lab matching is not configured")
	}

	summary, err := e.summarizer.Summarize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("summarizing input: %w", err)
	}
	query, err := e.extractor.Extract([]string{summary})
	if err != nil {
		return nil, fmt.Errorf("extracting input features: %w", err)
	}

	labs, err := e.corpus.Labs(ctx)
	if err != nil {
		return nil, err
	}
	vectors, err := e.vectors.All(ctx)
	if err != nil {
		return nil, err
	}

	scores := make([]types.LabScore, 0, len(labs))
	for _, lab := range labs {
		vec, ok := vectors[lab.Slug]
		if !ok {
			e.logger.Debug("lab has no feature vector", "lab", lab.Slug)
			continue
		}
		s, err := similarity.CosineDense(query, vec)
		if err != nil {
			e.logger.Warn("lab vector not comparable", "lab", lab.Slug, "error", err)
			continue
		}
		scores = append(scores, types.LabScore{Lab: lab, Score: s})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].ID < scores[j].ID
	})
	return scores, nil
}
