// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus persists theses and labs in SQLite and answers keyword
// queries over them. Each thesis is stored with the analyzed term counts
// of its title and body; queries run against an immutable in-memory index
// that is rebuilt when the corpus changes.
package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"

	"github.com/labthesis/thesis-engine/internal/similarity"
	"github.com/labthesis/thesis-engine/pkg/types"
)

const dbFile = "corpus.db"

// Store manages the corpus SQLite database.
type Store struct {
	db           *sql.DB
	pageSize     int
	popularCount int
	logger       *slog.Logger

	snap    atomic.Pointer[snapshot]
	buildMu sync.Mutex
}

type snapshot struct {
	generation int64
	index      *similarity.Index
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore opens or creates the corpus database at cfg.DataDir/corpus.db
// and creates the schema if it does not exist.
func NewStore(cfg types.CorpusConfig, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:           db,
		pageSize:     cfg.PageSize,
		popularCount: cfg.PopularCount,
		logger:       slog.Default(),
	}
	if s.pageSize <= 0 {
		s.pageSize = 4
	}
	if s.popularCount <= 0 {
		s.popularCount = 5
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// PageSize returns the default listing page size.
func (s *Store) PageSize() int { return s.pageSize }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS labs (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS theses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			year INTEGER NOT NULL DEFAULT 0,
			author TEXT NOT NULL DEFAULT '',
			lab_id INTEGER NOT NULL DEFAULT -1,
			access INTEGER NOT NULL DEFAULT 0,
			url TEXT NOT NULL DEFAULT '',
			path TEXT UNIQUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_theses_lab_id ON theses(lab_id)`,
		`CREATE INDEX IF NOT EXISTS idx_theses_access ON theses(access)`,
		`CREATE TABLE IF NOT EXISTS terms (
			thesis_id INTEGER PRIMARY KEY REFERENCES theses(id) ON DELETE CASCADE,
			title_terms TEXT NOT NULL,
			body_terms TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('generation', 0)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SyncLabs upserts the lab table.
func (s *Store) SyncLabs(ctx context.Context, labs []types.Lab) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, l := range labs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO labs (id, name, slug) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name=excluded.name, slug=excluded.slug`,
			l.ID, l.Name, l.Slug)
		if err != nil {
			return fmt.Errorf("upserting lab %s: %w", l.Slug, err)
		}
	}
	return tx.Commit()
}

// Labs returns all labs ordered by id.
func (s *Store) Labs(ctx context.Context) ([]types.Lab, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug FROM labs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying labs: %w", err)
	}
	defer rows.Close()

	var labs []types.Lab
	for rows.Next() {
		var l types.Lab
		if err := rows.Scan(&l.ID, &l.Name, &l.Slug); err != nil {
			return nil, fmt.Errorf("scanning lab: %w", err)
		}
		labs = append(labs, l)
	}
	return labs, rows.Err()
}

// Put inserts a thesis, or replaces it when t.ID is set or path matches an
// existing record, and returns its id. The term counts used by search are
// stored in the same transaction.
func (s *Store) Put(ctx context.Context, t types.Thesis, path string) (int64, error) {
	if !t.Searchable() {
		return 0, ErrNotSearchable
	}
	if t.LabID == 0 {
		t.LabID = types.NoLab
	}
	titleTerms, err := json.Marshal(similarity.Count(similarity.Analyze(t.Title)).Map())
	if err != nil {
		return 0, fmt.Errorf("encoding title terms: %w", err)
	}
	bodyTerms, err := json.Marshal(similarity.Count(similarity.Analyze(t.Body)).Map())
	if err != nil {
		return 0, fmt.Errorf("encoding body terms: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var nullPath sql.NullString
	if path != "" {
		nullPath = sql.NullString{String: path, Valid: true}
	}
	var nullID sql.NullInt64
	if t.ID > 0 {
		nullID = sql.NullInt64{Int64: t.ID, Valid: true}
	}
	if t.ID == 0 && path != "" {
		var existing int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM theses WHERE path = ?`, path).Scan(&existing)
		switch {
		case err == nil:
			nullID = sql.NullInt64{Int64: existing, Valid: true}
		case !errors.Is(err, sql.ErrNoRows):
			return 0, fmt.Errorf("looking up path: %w", err)
		}
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO theses (id, title, body, year, author, lab_id, access, url, path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, body=excluded.body, year=excluded.year,
			author=excluded.author, lab_id=excluded.lab_id, url=excluded.url,
			path=excluded.path
		 RETURNING id`,
		nullID, t.Title, t.Body, t.Year, t.Author, t.LabID, t.Access, t.URL, nullPath,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting thesis: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO terms (thesis_id, title_terms, body_terms) VALUES (?, ?, ?)
		 ON CONFLICT(thesis_id) DO UPDATE SET
			title_terms=excluded.title_terms, body_terms=excluded.body_terms`,
		id, string(titleTerms), string(bodyTerms))
	if err != nil {
		return 0, fmt.Errorf("storing terms: %w", err)
	}

	if err := bumpGeneration(ctx, tx); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing thesis: %w", err)
	}
	return id, nil
}

func bumpGeneration(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `UPDATE meta SET value = value + 1 WHERE key = 'generation'`); err != nil {
		return fmt.Errorf("bumping generation: %w", err)
	}
	return nil
}

// Generation returns a counter that changes whenever searchable content changes.
func (s *Store) Generation(ctx context.Context) (int64, error) {
	var gen int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = 'generation'`).Scan(&gen); err != nil {
		return 0, fmt.Errorf("reading generation: %w", err)
	}
	return gen, nil
}

// Index returns the similarity index for the current corpus generation,
// building it when the cached snapshot is stale. The returned index is
// immutable and safe to share.
func (s *Store) Index(ctx context.Context) (*similarity.Index, error) {
	gen, err := s.Generation(ctx)
	if err != nil {
		return nil, err
	}
	if snap := s.snap.Load(); snap != nil && snap.generation == gen {
		return snap.index, nil
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	if snap := s.snap.Load(); snap != nil && snap.generation == gen {
		return snap.index, nil
	}

	docs, err := s.loadDocs(ctx)
	if err != nil {
		return nil, err
	}
	ix := similarity.NewIndex(docs)
	s.snap.Store(&snapshot{generation: gen, index: ix})
	s.logger.Debug("corpus index rebuilt", "generation", gen, "docs", ix.Len())
	return ix, nil
}

func (s *Store) loadDocs(ctx context.Context) ([]similarity.Doc, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.lab_id, m.title_terms, m.body_terms
		 FROM theses t JOIN terms m ON m.thesis_id = t.id
		 ORDER BY t.id`)
	if err != nil {
		return nil, fmt.Errorf("loading term vectors: %w", err)
	}
	defer rows.Close()

	var docs []similarity.Doc
	for rows.Next() {
		var (
			d               similarity.Doc
			titleJSON, body string
		)
		if err := rows.Scan(&d.ID, &d.LabID, &titleJSON, &body); err != nil {
			return nil, fmt.Errorf("scanning term vector: %w", err)
		}
		var tm, bm map[string]int
		if err := json.Unmarshal([]byte(titleJSON), &tm); err != nil {
			return nil, fmt.Errorf("decoding title terms of %d: %w", d.ID, err)
		}
		if err := json.Unmarshal([]byte(body), &bm); err != nil {
			return nil, fmt.Errorf("decoding body terms of %d: %w", d.ID, err)
		}
		d.Title = similarity.FromMap(tm)
		d.Body = similarity.FromMap(bm)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
