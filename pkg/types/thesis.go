// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the thesis engine: the
// stored thesis corpus, labs and their feature vectors, scraped articles, and
// the query and result shapes exchanged with the web layer.
package types

import "strings"

// NoLab is the sentinel lab id meaning "no lab filter applied". It is never
// the id of a real lab.
const NoLab int64 = -1

// Thesis is a stored thesis as read by the search and recommendation
// engines. Records are created by the import path and never deleted here.
type Thesis struct {
	// ID is the primary key in the corpus store.
	ID int64 `json:"id" yaml:"id"`

	// Title is the thesis title.
	Title string `json:"title" yaml:"title"`

	// Body is the extracted full text of the thesis.
	Body string `json:"body" yaml:"body"`

	// Year is the submission year, zero when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Author is the author display name.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// LabID references the owning lab, or NoLab when unassigned.
	LabID int64 `json:"lab_id" yaml:"lab_id"`

	// Access counts how many times the thesis was shown.
	Access int64 `json:"access" yaml:"access"`

	// URL is the download location of the PDF.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Searchable reports whether the thesis has the title and body required to
// take part in search and similarity ranking.
func (t Thesis) Searchable() bool {
	return strings.TrimSpace(t.Title) != "" && strings.TrimSpace(t.Body) != ""
}

// Lab is a research lab. Name may contain non-ASCII characters; Slug is the
// directory/URL identifier used to key feature vectors.
type Lab struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Slug string `json:"slug" yaml:"slug"`
}

// FeatureVector is a fixed-dimension numeric summary of a lab's thesis
// corpus. All vectors in one store share the same dimension.
type FeatureVector []float32

// ScoredThesis pairs a thesis with its ranking score.
type ScoredThesis struct {
	Thesis
	Score float64 `json:"score" yaml:"score"`
}

// LabScore pairs a lab with its similarity to a document.
type LabScore struct {
	Lab
	Score float64 `json:"score" yaml:"score"`
}

// Page is one page of an ordered thesis listing.
type Page struct {
	Items    []ScoredThesis `json:"items" yaml:"items"`
	Page     int            `json:"page" yaml:"page"`
	PageSize int            `json:"page_size" yaml:"page_size"`
	Total    int            `json:"total" yaml:"total"`
}

// Pages returns the number of pages needed for Total items.
func (p Page) Pages() int {
	if p.PageSize <= 0 || p.Total == 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// Paginate clamps page and pageSize and returns the half-open slice bounds
// for a listing of total items. Pages are 1-based; page < 1 is treated as 1.
func Paginate(total, page, pageSize int) (start, end, clampedPage int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	if total < 0 {
		total = 0
	}
	// Compare before multiplying so huge page numbers cannot overflow.
	if page-1 > total/pageSize {
		start = total
	} else {
		start = min((page-1)*pageSize, total)
	}
	end = total
	if total-start > pageSize {
		end = start + pageSize
	}
	return start, end, page
}
