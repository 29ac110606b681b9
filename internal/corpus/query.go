// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/labthesis/thesis-engine/internal/similarity"
	"github.com/labthesis/thesis-engine/pkg/types"
)

const thesisColumns = `id, title, body, year, author, lab_id, access, url`

type scanner interface {
	Scan(dest ...any) error
}

func scanThesis(row scanner) (types.Thesis, error) {
	var t types.Thesis
	err := row.Scan(&t.ID, &t.Title, &t.Body, &t.Year, &t.Author, &t.LabID, &t.Access, &t.URL)
	return t, err
}

func (s *Store) queryTheses(ctx context.Context, query string, args ...any) ([]types.Thesis, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying theses: %w", err)
	}
	defer rows.Close()

	var out []types.Thesis
	for rows.Next() {
		t, err := scanThesis(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning thesis: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get returns the thesis with the given id.
func (s *Store) Get(ctx context.Context, id int64) (types.Thesis, error) {
	t, err := scanThesis(s.db.QueryRowContext(ctx,
		`SELECT `+thesisColumns+` FROM theses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Thesis{}, fmt.Errorf("thesis %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Thesis{}, fmt.Errorf("reading thesis %d: %w", id, err)
	}
	return t, nil
}

// GetMany returns the theses with the given ids keyed by id. Unknown ids
// are absent from the result.
func (s *Store) GetMany(ctx context.Context, ids []int64) (map[int64]types.Thesis, error) {
	out := make(map[int64]types.Thesis, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	theses, err := s.queryTheses(ctx,
		`SELECT `+thesisColumns+` FROM theses WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	for _, t := range theses {
		out[t.ID] = t
	}
	return out, nil
}

// All returns every thesis ordered by id.
func (s *Store) All(ctx context.Context) ([]types.Thesis, error) {
	return s.queryTheses(ctx, `SELECT `+thesisColumns+` FROM theses ORDER BY id`)
}

// ThesesByLab returns the theses of a lab ordered by id.
func (s *Store) ThesesByLab(ctx context.Context, labID int64) ([]types.Thesis, error) {
	return s.queryTheses(ctx,
		`SELECT `+thesisColumns+` FROM theses WHERE lab_id = ? ORDER BY id`, labID)
}

// Default returns one page of the full listing ordered by id. It is the
// result of a query with no active parameters.
func (s *Store) Default(ctx context.Context, page, pageSize int) (types.Page, error) {
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM theses`).Scan(&total); err != nil {
		return types.Page{}, fmt.Errorf("counting theses: %w", err)
	}
	start, end, page := types.Paginate(total, page, pageSize)

	theses, err := s.queryTheses(ctx,
		`SELECT `+thesisColumns+` FROM theses ORDER BY id LIMIT ? OFFSET ?`, end-start, start)
	if err != nil {
		return types.Page{}, err
	}
	items := make([]types.ScoredThesis, len(theses))
	for i, t := range theses {
		items[i] = types.ScoredThesis{Thesis: t}
	}
	return types.Page{Items: items, Page: page, PageSize: pageSize, Total: total}, nil
}

// Search runs a keyword query. An inactive query returns the default
// listing. Otherwise the keyword is analyzed in-process and every term must
// occur in the chosen field. Matches are ranked by TF-IDF cosine score,
// then by id. A keyword made only of stop words or punctuation matches
// nothing.
func (s *Store) Search(ctx context.Context, q types.SearchQuery, page, pageSize int) (types.Page, error) {
	if !q.Active() {
		return s.Default(ctx, page, pageSize)
	}
	ix, err := s.Index(ctx)
	if err != nil {
		return types.Page{}, err
	}
	terms := similarity.Analyze(q.Keyword)
	if len(terms) == 0 && strings.TrimSpace(q.Keyword) != "" {
		// Only stop words or punctuation: nothing can match.
		return s.HitPage(ctx, nil, page, pageSize)
	}
	hits := ix.Query(terms, q.Field, q.LabID)
	return s.HitPage(ctx, hits, page, pageSize)
}

// HitPage hydrates one page of ranked hits into theses.
func (s *Store) HitPage(ctx context.Context, hits []similarity.Hit, page, pageSize int) (types.Page, error) {
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	start, end, page := types.Paginate(len(hits), page, pageSize)
	window := hits[start:end]

	ids := make([]int64, len(window))
	for i, h := range window {
		ids[i] = h.ID
	}
	byID, err := s.GetMany(ctx, ids)
	if err != nil {
		return types.Page{}, err
	}

	items := make([]types.ScoredThesis, 0, len(window))
	for _, h := range window {
		t, ok := byID[h.ID]
		if !ok {
			continue
		}
		items = append(items, types.ScoredThesis{Thesis: t, Score: h.Score})
	}
	return types.Page{Items: items, Page: page, PageSize: pageSize, Total: len(hits)}, nil
}

// Popular returns the most accessed theses, ties broken by id.
func (s *Store) Popular(ctx context.Context, n int) ([]types.Thesis, error) {
	if n <= 0 {
		n = s.popularCount
	}
	return s.queryTheses(ctx,
		`SELECT `+thesisColumns+` FROM theses ORDER BY access DESC, id LIMIT ?`, n)
}

// RecordAccess increments the access counter of a thesis.
func (s *Store) RecordAccess(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE theses SET access = access + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("recording access to %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("thesis %d: %w", id, ErrNotFound)
	}
	return nil
}
