// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity holds the single similarity primitive shared by keyword
// search, "more like this" and lab matching: text is analyzed into index
// terms, terms are weighted, and documents are compared by cosine
// similarity. All arithmetic iterates terms in sorted order so results are
// bit-identical across runs on identical data.
package similarity

import (
	"sort"
	"unicode"

	"github.com/labthesis/thesis-engine/internal/textnorm"
)

// stopWords are dropped from Latin-script tokens.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

type class int

const (
	classOther class = iota
	classWord        // Latin letters, digits and other spaced scripts
	classCJK         // Han, Hiragana, Katakana
)

func classify(r rune) class {
	switch {
	case unicode.Is(unicode.Han, r), unicode.Is(unicode.Hiragana, r),
		unicode.Is(unicode.Katakana, r), r == 'ー', r == '々':
		return classCJK
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
		return classWord
	default:
		return classOther
	}
}

// Analyze turns text into index terms. The text is normalized first.
// Runs of Latin-script letters and digits become one lower-cased word term
// each, minus stop words. Runs of CJK characters, which carry no spaces,
// become overlapping character bigrams plus unigrams of every non-Hiragana
// character, so short keywords still match without a segmenter.
func Analyze(text string) []string {
	text = textnorm.Normalize(text)
	var (
		terms []string
		run   []rune
		kind  = classOther
	)
	flush := func() {
		switch kind {
		case classWord:
			w := string(run)
			if !stopWords[w] {
				terms = append(terms, w)
			}
		case classCJK:
			terms = appendCJK(terms, run)
		}
		run = run[:0]
	}
	for _, r := range text {
		c := classify(r)
		if c != kind {
			flush()
			kind = c
		}
		if c != classOther {
			run = append(run, r)
		}
	}
	flush()
	return terms
}

func appendCJK(terms []string, run []rune) []string {
	if len(run) == 1 {
		return append(terms, string(run))
	}
	for i, r := range run {
		if !unicode.Is(unicode.Hiragana, r) {
			terms = append(terms, string(r))
		}
		if i+1 < len(run) {
			terms = append(terms, string(run[i:i+2]))
		}
	}
	return terms
}

// Unique returns the distinct terms in sorted order.
func Unique(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
