// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package nlp wraps the language tools used on the batch path: word
// segmentation (MeCab or an in-process fallback) and extractive
// summarization (an external script or the in-process Luhn engine).
package nlp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/labthesis/thesis-engine/internal/textnorm"
)

// DefaultWordBudget caps the tokens handed to the summarization engine.
const DefaultWordBudget = 60000

// Summarizer normalizes, segments and summarizes text.
type Summarizer struct {
	seg    Segmenter
	engine Engine
	budget int
	logger *slog.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithWordBudget sets the default token budget. Non-positive values are ignored.
func WithWordBudget(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.budget = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Summarizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSummarizer creates a Summarizer over the given segmenter and engine.
func NewSummarizer(seg Segmenter, engine Engine, opts ...Option) *Summarizer {
	s := &Summarizer{
		seg:    seg,
		engine: engine,
		budget: DefaultWordBudget,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WordBudget returns the default token budget.
func (s *Summarizer) WordBudget() int { return s.budget }

// Summarize summarizes text within the default word budget.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	return s.SummarizeBudget(ctx, text, s.budget)
}

// SummarizeBudget summarizes text, handing at most words tokens to the
// engine. The result has all whitespace removed.
func (s *Summarizer) SummarizeBudget(ctx context.Context, text string, words int) (string, error) {
	prepared := textnorm.MarkSentences(textnorm.Normalize(text))

	tokens, err := s.seg.Segment(ctx, prepared)
	if err != nil {
		return "", fmt.Errorf("segmenting: %w", err)
	}
	if words <= 0 {
		words = s.budget
	}
	if len(tokens) > words {
		s.logger.Debug("truncating summarizer input", "tokens", len(tokens), "budget", words)
		tokens = textnorm.Truncate(tokens, words)
	}
	input := strings.Join(tokens, " ")

	stdout, stderr, err := s.engine.Run(ctx, input)
	if strings.TrimSpace(stderr) != "" {
		return "", &SummarizationError{
			Detail: strings.TrimSpace(stderr),
			Input:  textnorm.Excerpt(input, maxInputEcho),
		}
	}
	if err != nil {
		return "", fmt.Errorf("summarizing: %w", err)
	}
	return stripSpace(stdout), nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
