// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/labthesis/thesis-engine/pkg/types"
)

// Segmenter splits text into word tokens.
type Segmenter interface {
	Segment(ctx context.Context, text string) ([]string, error)
}

// MecabSegmenter runs MeCab in wakati mode. The dictionary directory is
// taken from configuration or resolved through mecab-config on first use.
type MecabSegmenter struct {
	bin       string
	configBin string
	dictName  string
	runner    Runner

	mu       sync.Mutex
	resolved bool
	dicdir   string
	dicErr   error
}

// NewMecabSegmenter creates a segmenter from cfg. A nil runner uses os/exec.
func NewMecabSegmenter(cfg types.NLPConfig, runner Runner) *MecabSegmenter {
	if runner == nil {
		runner = defaultRunner
	}
	s := &MecabSegmenter{
		bin:       orDefault(cfg.MecabBin, "mecab"),
		configBin: orDefault(cfg.MecabConfigBin, "mecab-config"),
		dictName:  orDefault(cfg.DictionaryName, "mecab-ipadic-neologd"),
		runner:    runner,
	}
	if cfg.DictionaryDir != "" {
		s.dicdir, s.resolved = cfg.DictionaryDir, true
	}
	return s
}

// DictionaryDir returns the resolved dictionary directory. The result of
// the first completed resolution is kept; a resolution cut short by ctx is
// retried on the next call.
func (s *MecabSegmenter) DictionaryDir(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved {
		return s.dicdir, s.dicErr
	}
	dir, err := s.resolveDictionary(ctx)
	if err != nil && ctx.Err() != nil {
		return "", err
	}
	s.dicdir, s.dicErr, s.resolved = dir, err, true
	return dir, err
}

func (s *MecabSegmenter) resolveDictionary(ctx context.Context) (string, error) {
	if _, err := s.runner.LookPath(s.configBin); err != nil {
		return "", fmt.Errorf("%w: %s not found", ErrSegmentationUnavailable, s.configBin)
	}
	out, _, err := s.runner.Run(ctx, s.configBin, []string{"--dicdir"}, nil)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: resolving dictionary: %w", ErrSegmentationUnavailable, err)
	}
	root := strings.TrimSpace(string(out))
	if root == "" {
		return "", fmt.Errorf("%w: %s printed no dicdir", ErrSegmentationUnavailable, s.configBin)
	}
	return filepath.Join(root, s.dictName), nil
}

func (s *MecabSegmenter) Segment(ctx context.Context, text string) ([]string, error) {
	if _, err := s.runner.LookPath(s.bin); err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrSegmentationUnavailable, s.bin)
	}
	dicdir, err := s.DictionaryDir(ctx)
	if err != nil {
		return nil, err
	}
	out, stderr, err := s.runner.Run(ctx, s.bin, []string{"-Owakati", "-d", dicdir}, strings.NewReader(text))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: running %s: %s: %w", ErrSegmentationUnavailable, s.bin,
			strings.TrimSpace(string(stderr)), err)
	}
	return strings.Fields(string(out)), nil
}

// WhitespaceSegmenter splits on whitespace and on script changes between
// Han, Hiragana, Katakana and Latin text. Punctuation becomes its own
// token. It needs no external tools.
type WhitespaceSegmenter struct{}

func (WhitespaceSegmenter) Segment(_ context.Context, text string) ([]string, error) {
	var (
		tokens []string
		cur    []rune
		prev   script
	)
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range text {
		sc := scriptOf(r)
		switch {
		case sc == scriptSpace:
			flush()
		case sc == scriptPunct:
			flush()
			tokens = append(tokens, string(r))
		case sc != prev:
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = sc
	}
	flush()
	return tokens, nil
}

type script int

const (
	scriptSpace script = iota
	scriptPunct
	scriptHan
	scriptHiragana
	scriptKatakana
	scriptOther
)

func scriptOf(r rune) script {
	switch {
	case unicode.IsSpace(r):
		return scriptSpace
	case unicode.Is(unicode.Han, r), r == '々':
		return scriptHan
	case unicode.Is(unicode.Hiragana, r):
		return scriptHiragana
	case unicode.Is(unicode.Katakana, r), r == 'ー':
		return scriptKatakana
	case unicode.IsPunct(r), unicode.IsSymbol(r):
		return scriptPunct
	default:
		return scriptOther
	}
}

// FallbackSegmenter uses Primary and degrades to Fallback when Primary
// reports ErrSegmentationUnavailable.
type FallbackSegmenter struct {
	Primary  Segmenter
	Fallback Segmenter
	Logger   *slog.Logger
}

func (f *FallbackSegmenter) Segment(ctx context.Context, text string) ([]string, error) {
	tokens, err := f.Primary.Segment(ctx, text)
	if err == nil || !errors.Is(err, ErrSegmentationUnavailable) {
		return tokens, err
	}
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("segmenter unavailable, degrading", "error", err)
	return f.Fallback.Segment(ctx, text)
}

// NewSegmenter builds the segmenter described by cfg.
func NewSegmenter(cfg types.NLPConfig, runner Runner, logger *slog.Logger) Segmenter {
	mecab := NewMecabSegmenter(cfg, runner)
	if !cfg.SegmenterFallback {
		return mecab
	}
	return &FallbackSegmenter{Primary: mecab, Fallback: WhitespaceSegmenter{}, Logger: logger}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
