// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

import (
	"fmt"
	"math"
	"sort"
)

// TermCount is the frequency of one term in a document field.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Counts is a term-frequency vector sorted by term.
type Counts []TermCount

// Count builds a sorted term-frequency vector from terms.
func Count(terms []string) Counts {
	m := make(map[string]int, len(terms))
	for _, t := range terms {
		m[t]++
	}
	return FromMap(m)
}

// FromMap converts a term->count map into sorted Counts, dropping
// non-positive counts.
func FromMap(m map[string]int) Counts {
	out := make(Counts, 0, len(m))
	for t, c := range m {
		if c > 0 {
			out = append(out, TermCount{Term: t, Count: c})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out
}

// Map converts Counts back to a map, as stored in the corpus.
func (c Counts) Map() map[string]int {
	m := make(map[string]int, len(c))
	for _, tc := range c {
		m[tc.Term] = tc.Count
	}
	return m
}

// Has reports whether term occurs in c.
func (c Counts) Has(term string) bool {
	i := sort.Search(len(c), func(i int) bool { return c[i].Term >= term })
	return i < len(c) && c[i].Term == term
}

// Merge adds two count vectors.
func Merge(a, b Counts) Counts {
	out := make(Counts, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i].Term < b[j].Term):
			out = append(out, a[i])
			i++
		case i >= len(a) || b[j].Term < a[i].Term:
			out = append(out, b[j])
			j++
		default:
			out = append(out, TermCount{Term: a[i].Term, Count: a[i].Count + b[j].Count})
			i++
			j++
		}
	}
	return out
}

// Weighted is a sparse weighted vector sorted by term, with its L2 norm.
type Weighted struct {
	Terms   []string
	Weights []float64
	Norm    float64
}

// Weigh applies weight(term, count) to every entry of c.
func Weigh(c Counts, weight func(term string, count int) float64) Weighted {
	w := Weighted{
		Terms:   make([]string, len(c)),
		Weights: make([]float64, len(c)),
	}
	var sum float64
	for i, tc := range c {
		w.Terms[i] = tc.Term
		w.Weights[i] = weight(tc.Term, tc.Count)
		sum += w.Weights[i] * w.Weights[i]
	}
	w.Norm = math.Sqrt(sum)
	return w
}

// Cosine returns the cosine similarity of two weighted vectors, or 0 when
// either has zero magnitude.
func Cosine(a, b Weighted) float64 {
	if a.Norm == 0 || b.Norm == 0 {
		return 0
	}
	var dot float64
	i, j := 0, 0
	for i < len(a.Terms) && j < len(b.Terms) {
		switch {
		case a.Terms[i] < b.Terms[j]:
			i++
		case a.Terms[i] > b.Terms[j]:
			j++
		default:
			dot += a.Weights[i] * b.Weights[j]
			i++
			j++
		}
	}
	return dot / (a.Norm * b.Norm)
}

// CosineDense computes the cosine similarity between two fixed-dimension
// vectors. It returns an error if the dimensions differ or either vector
// has zero magnitude.
func CosineDense(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine similarity dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("cosine similarity on empty vectors")
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, fmt.Errorf("cosine similarity with zero-magnitude vector")
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2)), nil
}
