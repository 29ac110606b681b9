// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

import (
	"math"
	"sort"

	"github.com/labthesis/thesis-engine/pkg/types"
)

// Doc is the analyzed form of one thesis.
type Doc struct {
	ID    int64
	LabID int64
	Title Counts
	Body  Counts
}

// Hit is a ranked document reference.
type Hit struct {
	ID    int64
	Score float64
}

type scope struct {
	df      map[string]int
	vectors []Weighted // parallel to Index.docs
}

// Index is an immutable TF-IDF view over the corpus. It is safe for
// concurrent use once built.
type Index struct {
	docs   []Doc
	byID   map[int64]int
	title  scope
	body   scope
	all    scope
	counts struct{ title, body, all []Counts }
}

// NewIndex builds an index over docs. Docs are ordered by id.
func NewIndex(docs []Doc) *Index {
	ix := &Index{
		docs: append([]Doc(nil), docs...),
		byID: make(map[int64]int, len(docs)),
	}
	sort.Slice(ix.docs, func(i, j int) bool { return ix.docs[i].ID < ix.docs[j].ID })

	n := len(ix.docs)
	ix.counts.title = make([]Counts, n)
	ix.counts.body = make([]Counts, n)
	ix.counts.all = make([]Counts, n)
	for i, d := range ix.docs {
		ix.byID[d.ID] = i
		ix.counts.title[i] = d.Title
		ix.counts.body[i] = d.Body
		ix.counts.all[i] = Merge(d.Title, d.Body)
	}
	ix.title = buildScope(ix.counts.title)
	ix.body = buildScope(ix.counts.body)
	ix.all = buildScope(ix.counts.all)
	return ix
}

func buildScope(counts []Counts) scope {
	s := scope{df: make(map[string]int), vectors: make([]Weighted, len(counts))}
	for _, c := range counts {
		for _, tc := range c {
			s.df[tc.Term]++
		}
	}
	n := len(counts)
	for i, c := range counts {
		s.vectors[i] = Weigh(c, func(term string, count int) float64 {
			return float64(count) * idf(n, s.df[term])
		})
	}
	return s
}

// idf is the smoothed inverse document frequency ln(1 + n/df).
func idf(n, df int) float64 {
	if df <= 0 {
		return 0
	}
	return math.Log(1 + float64(n)/float64(df))
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.docs) }

// Doc returns the analyzed document with the given id.
func (ix *Index) Doc(id int64) (Doc, bool) {
	i, ok := ix.byID[id]
	if !ok {
		return Doc{}, false
	}
	return ix.docs[i], true
}

func (ix *Index) scopeFor(f types.Field) (scope, []Counts) {
	switch f {
	case types.FieldTitle:
		return ix.title, ix.counts.title
	case types.FieldBody:
		return ix.body, ix.counts.body
	default:
		return ix.all, ix.counts.all
	}
}

// Query returns the documents in which every term occurs within the field
// scope, restricted to labID when it names a real lab. Hits are scored by
// cosine similarity between the query and the scoped document vectors and
// ordered by score descending, then id ascending. With no terms every
// document in the lab scope matches with score zero.
func (ix *Index) Query(terms []string, field types.Field, labID int64) []Hit {
	sc, counts := ix.scopeFor(field)
	uniq := Unique(terms)
	q := Weigh(Count(terms), func(term string, count int) float64 {
		return float64(count) * idf(len(ix.docs), sc.df[term])
	})

	hits := make([]Hit, 0)
	for i, d := range ix.docs {
		if labID > 0 && labID != types.NoLab && d.LabID != labID {
			continue
		}
		if !containsAll(counts[i], uniq) {
			continue
		}
		hits = append(hits, Hit{ID: d.ID, Score: Cosine(q, sc.vectors[i])})
	}
	Rank(hits)
	return hits
}

func containsAll(c Counts, terms []string) bool {
	for _, t := range terms {
		if !c.Has(t) {
			return false
		}
	}
	return true
}

// Similar ranks every other document by body similarity to the document
// with the given id. Documents with zero similarity are left out. The
// boolean is false when id is not indexed.
func (ix *Index) Similar(id int64) ([]Hit, bool) {
	ref, ok := ix.byID[id]
	if !ok {
		return nil, false
	}
	q := ix.body.vectors[ref]
	hits := make([]Hit, 0)
	for i, d := range ix.docs {
		if i == ref {
			continue
		}
		s := Cosine(q, ix.body.vectors[i])
		if s <= 0 || math.IsNaN(s) {
			continue
		}
		hits = append(hits, Hit{ID: d.ID, Score: s})
	}
	Rank(hits)
	return hits, true
}

// Rank orders hits by score descending, breaking ties by id ascending.
func Rank(hits []Hit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
}
