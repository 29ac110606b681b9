// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textnorm canonicalizes raw thesis and query text before it is
// tokenized or handed to an external process. Normalize folds character
// widths, lower-cases, strips characters that are unsafe on a command line,
// and collapses whitespace. It never fails.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// unsafeRunes are replaced by a space: quoting, command separators,
// redirection, substitution and glob characters.
const unsafeRunes = "\"'`;|&$<>\\(){}*?!#~^"

// Normalize returns the canonical form of s. Full-width ASCII and half-width
// katakana fold to a single width, letters are lower-cased, control and
// shell-unsafe characters become spaces, and whitespace runs collapse to one
// space. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = width.Fold.String(s)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	space := true // suppresses leading space
	for _, r := range s {
		if unsafe(r) || unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		b.WriteRune(r)
		space = false
	}
	return strings.TrimRight(b.String(), " ")
}

func unsafe(r rune) bool {
	if r == unicode.ReplacementChar {
		return false
	}
	if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
		return true
	}
	return strings.ContainsRune(unsafeRunes, r)
}

// MarkSentences turns every Japanese or ASCII full stop into ". " so that
// downstream sentence splitting sees a uniform delimiter.
func MarkSentences(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)
	for _, r := range s {
		switch r {
		case '。', '．', '.':
			b.WriteString(". ")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Truncate returns at most n tokens. A non-positive n keeps everything.
func Truncate(tokens []string, n int) []string {
	if n <= 0 || len(tokens) <= n {
		return tokens
	}
	return tokens[:n]
}

// Excerpt shortens s to at most n runes for log and error context.
func Excerpt(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}
