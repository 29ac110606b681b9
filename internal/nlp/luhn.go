// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nlp

import (
	"context"
	"math"
	"sort"
	"strings"
)

// LuhnEngine is an in-process extractive summarizer after Luhn (1958).
// Sentences are scored by their densest cluster of significant words and
// the best ones are returned in document order.
type LuhnEngine struct {
	// TargetWords is how many of the most frequent words count as significant.
	TargetWords int
	// ClusterGap is the maximum distance between significant words in one cluster.
	ClusterGap int
	// TopSentences selects the top-N filter; zero selects the mean + std/2 filter.
	TopSentences int
}

// NewLuhnEngine returns an engine with the classic parameters.
func NewLuhnEngine() *LuhnEngine {
	return &LuhnEngine{TargetWords: 100, ClusterGap: 5, TopSentences: 5}
}

type scoredSentence struct {
	idx   int
	score float64
}

// Run expects whitespace-separated tokens with sentence ends marked by "."
// tokens and writes the selected sentences one per line.
func (l *LuhnEngine) Run(ctx context.Context, segmented string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	sentences := splitSentences(strings.Fields(segmented))
	if len(sentences) == 0 {
		return "", "", nil
	}
	significant := l.significantWords(sentences)

	var scored []scoredSentence
	for i, s := range sentences {
		if score, ok := l.score(s, significant); ok {
			scored = append(scored, scoredSentence{idx: i, score: score})
		}
	}

	var kept []scoredSentence
	if l.TopSentences > 0 {
		kept = topN(scored, l.TopSentences)
	} else {
		kept = aboveMean(scored)
	}

	var b strings.Builder
	for _, s := range kept {
		b.WriteString(strings.Join(sentences[s.idx], " "))
		b.WriteString(" .\n")
	}
	return b.String(), "", nil
}

func splitSentences(tokens []string) [][]string {
	var out [][]string
	var cur []string
	for _, t := range tokens {
		if t == "." {
			if len(cur) > 0 {
				out = append(out, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// significantWords returns the TargetWords most frequent tokens, ties broken
// by first appearance.
func (l *LuhnEngine) significantWords(sentences [][]string) []string {
	freq := map[string]int{}
	var order []string
	for _, s := range sentences {
		for _, t := range s {
			if freq[t] == 0 {
				order = append(order, t)
			}
			freq[t]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })
	if len(order) > l.TargetWords {
		order = order[:l.TargetWords]
	}
	return order
}

// score is the best cluster score of a sentence: significant² / span.
func (l *LuhnEngine) score(sentence, significant []string) (float64, bool) {
	var positions []int
	for _, w := range significant {
		for i, t := range sentence {
			if t == w {
				positions = append(positions, i)
				break
			}
		}
	}
	if len(positions) == 0 {
		return 0, false
	}
	sort.Ints(positions)

	best := 0.0
	start := 0
	for i := 1; i <= len(positions); i++ {
		if i < len(positions) && positions[i]-positions[i-1] < l.ClusterGap {
			continue
		}
		n := float64(i - start)
		span := float64(positions[i-1] - positions[start] + 1)
		best = math.Max(best, n*n/span)
		start = i
	}
	return best, true
}

func topN(scored []scoredSentence, n int) []scoredSentence {
	sorted := append([]scoredSentence(nil), scored...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].score > sorted[j].score })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].idx < sorted[j].idx })
	return sorted
}

func aboveMean(scored []scoredSentence) []scoredSentence {
	if len(scored) == 0 {
		return nil
	}
	var sum float64
	for _, s := range scored {
		sum += s.score
	}
	mean := sum / float64(len(scored))
	var variance float64
	for _, s := range scored {
		variance += (s.score - mean) * (s.score - mean)
	}
	limit := mean + 0.5*math.Sqrt(variance/float64(len(scored)))

	var out []scoredSentence
	for _, s := range scored {
		if s.score > limit {
			out = append(out, s)
		}
	}
	return out
}
