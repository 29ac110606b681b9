// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package labs maps archive paths to the lab that owns them and decides
// which archive files are theses.
package labs

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/labthesis/thesis-engine/pkg/types"
)

type entry struct {
	lab      types.Lab
	patterns []*regexp.Regexp
}

// Directory is an ordered (pattern, lab) table. The first entry with a
// matching pattern owns a path.
type Directory struct {
	entries []entry
	byID    map[int64]types.Lab
	bySlug  map[string]types.Lab
}

// NewDirectory compiles the lab table. An entry with no patterns matches
// on its slug.
func NewDirectory(table []types.LabEntry) (*Directory, error) {
	d := &Directory{
		byID:   make(map[int64]types.Lab, len(table)),
		bySlug: make(map[string]types.Lab, len(table)),
	}
	for _, e := range table {
		if e.ID <= 0 || e.Slug == "" {
			return nil, fmt.Errorf("lab entry %q: id and slug are required", e.Name)
		}
		if _, dup := d.byID[e.ID]; dup {
			return nil, fmt.Errorf("lab entry %q: duplicate id %d", e.Slug, e.ID)
		}
		if _, dup := d.bySlug[e.Slug]; dup {
			return nil, fmt.Errorf("lab entry %d: duplicate slug %q", e.ID, e.Slug)
		}
		lab := types.Lab{ID: e.ID, Name: e.Name, Slug: e.Slug}
		patterns := e.Patterns
		if len(patterns) == 0 {
			patterns = []string{regexp.QuoteMeta(e.Slug)}
		}
		en := entry{lab: lab}
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("lab %s pattern %q: %w", e.Slug, p, err)
			}
			en.patterns = append(en.patterns, re)
		}
		d.entries = append(d.entries, en)
		d.byID[lab.ID] = lab
		d.bySlug[lab.Slug] = lab
	}
	return d, nil
}

// Labs returns the labs in table order.
func (d *Directory) Labs() []types.Lab {
	out := make([]types.Lab, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.lab
	}
	return out
}

// ByID looks up a lab by id.
func (d *Directory) ByID(id int64) (types.Lab, bool) {
	l, ok := d.byID[id]
	return l, ok
}

// BySlug looks up a lab by slug.
func (d *Directory) BySlug(slug string) (types.Lab, bool) {
	l, ok := d.bySlug[slug]
	return l, ok
}

// Resolve returns the lab owning p and the remainder of p below the path
// segment that matched, which is what IsThesisPath inspects.
func (d *Directory) Resolve(p string) (types.Lab, string, bool) {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	segments := strings.Split(p, "/")
	for _, e := range d.entries {
		for _, re := range e.patterns {
			for i, seg := range segments {
				if re.MatchString(seg) {
					return e.lab, strings.Join(segments[i+1:], "/"), true
				}
			}
		}
	}
	return types.Lab{}, "", false
}

var (
	thesisPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^thesis.+`),
		regexp.MustCompile(`.+_[Tt]\.pdf`),
		regexp.MustCompile(`^abstract/undergraduate`),
		regexp.MustCompile(`(postgrad|undrgrad)/.+\.pdf`),
	}
	abstractPath        = regexp.MustCompile(`^abs/.+`)
	englishAbstractPath = regexp.MustCompile(`^abs/.+E\.pdf$`)
	indexPath           = regexp.MustCompile(`^index\.html?$`)
)

// IsThesisPath reports whether rel, a path relative to a lab directory,
// names a thesis under one of the lab archive layouts.
func IsThesisPath(rel string) bool {
	for _, re := range thesisPatterns {
		if re.MatchString(rel) {
			return true
		}
	}
	return abstractPath.MatchString(rel) && !englishAbstractPath.MatchString(rel)
}

// IsIndexPath reports whether p is a directory index page.
func IsIndexPath(p string) bool {
	return indexPath.MatchString(path.Base(p))
}
