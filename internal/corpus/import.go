// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/labthesis/thesis-engine/internal/labs"
	"github.com/labthesis/thesis-engine/pkg/types"
)

// Record is one thesis as read from an import file. Path is the location of
// the thesis in the lab archive; it decides the owning lab when Lab is
// empty and whether the file is a thesis at all.
type Record struct {
	ID     int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Title  string `json:"title" yaml:"title"`
	Body   string `json:"body" yaml:"body"`
	Year   int    `json:"year,omitempty" yaml:"year,omitempty"`
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
	Lab    string `json:"lab,omitempty" yaml:"lab,omitempty"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
	Access int64  `json:"access,omitempty" yaml:"access,omitempty"`
}

// ImportSummary holds counts from an import run.
type ImportSummary struct {
	Imported int
	Skipped  int
	Failed   int
}

// Total returns the number of records processed.
func (s ImportSummary) Total() int {
	return s.Imported + s.Skipped + s.Failed
}

var errSkip = errors.New("skipped")

// Import reads every .yaml/.yml file below dir, each holding one Record,
// and stores the theses. Records whose path is an index page or does not
// follow a thesis layout are skipped; records without a title or body are
// counted as failures. Progress is written to w.
func (s *Store) Import(ctx context.Context, dir string, directory *labs.Directory, w io.Writer) (ImportSummary, error) {
	if err := s.SyncLabs(ctx, directory.Labs()); err != nil {
		return ImportSummary{}, err
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !d.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading import directory %s: %w", dir, err)
	}

	var summary ImportSummary
	for _, file := range files {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name, _ := filepath.Rel(dir, file)
		id, err := s.importFile(ctx, file, directory)
		switch {
		case errors.Is(err, errSkip):
			fmt.Fprintf(w, "skipped %s: %v\n", name, err)
			summary.Skipped++
		case err != nil:
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
		default:
			fmt.Fprintf(w, "imported %s (id %d)\n", name, id)
			summary.Imported++
		}
	}

	fmt.Fprintf(w, "\nimported: %d, skipped: %d, failed: %d\n",
		summary.Imported, summary.Skipped, summary.Failed)
	return summary, nil
}

func (s *Store) importFile(ctx context.Context, file string, directory *labs.Directory) (int64, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return 0, err
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return 0, fmt.Errorf("parse error: %w", err)
	}
	t, err := resolveRecord(rec, directory)
	if err != nil {
		return 0, err
	}
	return s.Put(ctx, t, rec.Path)
}

// resolveRecord turns an import record into a thesis, assigning its lab.
func resolveRecord(rec Record, directory *labs.Directory) (types.Thesis, error) {
	t := types.Thesis{
		ID:     rec.ID,
		Title:  strings.TrimSpace(rec.Title),
		Body:   rec.Body,
		Year:   rec.Year,
		Author: rec.Author,
		LabID:  types.NoLab,
		URL:    rec.URL,
		Access: rec.Access,
	}

	if rec.Path != "" {
		if labs.IsIndexPath(rec.Path) {
			return t, fmt.Errorf("%w: index page %s", errSkip, rec.Path)
		}
		lab, rel, ok := directory.Resolve(rec.Path)
		if ok {
			if !labs.IsThesisPath(rel) {
				return t, fmt.Errorf("%w: %s is not a thesis path", errSkip, rec.Path)
			}
			t.LabID = lab.ID
		}
	}
	if rec.Lab != "" {
		lab, ok := directory.BySlug(rec.Lab)
		if !ok {
			return t, fmt.Errorf("unknown lab %q", rec.Lab)
		}
		t.LabID = lab.ID
	}
	if !t.Searchable() {
		return t, ErrNotSearchable
	}
	return t, nil
}
