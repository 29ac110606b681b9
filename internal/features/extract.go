// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package features builds and stores per-lab feature vectors. A lab's
// vector is derived from the summaries of its theses and compared with
// other vectors by cosine similarity.
package features

import (
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/labthesis/thesis-engine/internal/similarity"
	"github.com/labthesis/thesis-engine/pkg/types"
)

// DefaultDimension is the feature vector length used when none is configured.
const DefaultDimension = 512

// Extractor turns a set of summaries into a fixed-dimension vector.
//
// The summaries are analyzed into terms and their counts aggregated. Each
// term contributes 1 + ln(count) to bucket xxhash64(term) mod Dim, with the
// sign taken from the top bit of the hash. The result is L2-normalized.
// Terms are visited in sorted order and summed in float64, so the same
// input always yields the same vector.
type Extractor struct {
	Dim int
}

// Dimension returns the vector length, applying the default.
func (e Extractor) Dimension() int {
	if e.Dim <= 0 {
		return DefaultDimension
	}
	return e.Dim
}

// Extract builds the feature vector for summaries.
func (e Extractor) Extract(summaries []string) (types.FeatureVector, error) {
	var terms []string
	for _, s := range summaries {
		terms = append(terms, similarity.Analyze(s)...)
	}
	if len(terms) == 0 {
		return nil, ErrEmptyCorpus
	}

	dim := e.Dimension()
	acc := make([]float64, dim)
	for _, tc := range similarity.Count(terms) {
		h := xxhash.Sum64String(tc.Term)
		w := 1 + math.Log(float64(tc.Count))
		if h>>63 == 1 {
			w = -w
		}
		acc[h%uint64(dim)] += w
	}

	var sum float64
	for _, v := range acc {
		sum += v * v
	}
	if sum == 0 {
		return nil, ErrEmptyCorpus
	}
	norm := math.Sqrt(sum)

	vec := make(types.FeatureVector, dim)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}
