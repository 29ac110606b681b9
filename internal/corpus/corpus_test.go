package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labthesis/thesis-engine/internal/labs"
	"github.com/labthesis/thesis-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.CorpusConfig{DataDir: t.TempDir(), PageSize: 4, PopularCount: 5})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.SyncLabs(ctx, []types.Lab{
		{ID: 1, Name: "鷲見研究室", Slug: "sumi"},
		{ID: 2, Name: "Dürst 研究室", Slug: "durst"},
	}))
	theses := []types.Thesis{
		{Title: "Proxy caching", Body: "Caching reduces latency for web clients.", LabID: 1},
		{Title: "Load balancing", Body: "A proxy forwards requests to backend servers.", LabID: 2},
		{Title: "Garbage collection", Body: "Generational collectors reclaim memory.", LabID: 1},
		{Title: "ウェブ検索の研究", Body: "検索エンジンの索引構造について述べる。", LabID: 2},
		{Title: "Proxy design", Body: "Designing a caching proxy for clients.", LabID: 2},
	}
	for _, th := range theses {
		_, err := s.Put(ctx, th, "")
		require.NoError(t, err)
	}
}

func pageIDs(p types.Page) []int64 {
	ids := make([]int64, len(p.Items))
	for i, it := range p.Items {
		ids[i] = it.ID
	}
	return ids
}

// --- tests ---

func TestPut_RejectsUnsearchable(t *testing.T) {
	s := testStore(t)
	_, err := s.Put(context.Background(), types.Thesis{Title: "only title"}, "")
	assert.ErrorIs(t, err, ErrNotSearchable)
}

func TestPut_UpsertByPath(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id1, err := s.Put(ctx, types.Thesis{Title: "a", Body: "b"}, "sumi/thesis/a.pdf")
	require.NoError(t, err)
	id2, err := s.Put(ctx, types.Thesis{Title: "a2", Body: "b2"}, "sumi/thesis/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	got, err := s.Get(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, "a2", got.Title)
	assert.Equal(t, types.NoLab, got.LabID)
}

func TestGet_NotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearch_InactiveQueryReturnsDefaultListing(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	inactive := []types.SearchQuery{
		{LabID: types.NoLab},
		{Keyword: "   ", LabID: types.NoLab},
		{LabID: 0},
	}
	for _, q := range inactive {
		page, err := s.Search(ctx, q, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3, 4}, pageIDs(page))
		assert.Equal(t, 5, page.Total)
		assert.Equal(t, 4, page.PageSize)
		assert.Equal(t, 2, page.Pages())
	}

	page, err := s.Search(ctx, types.SearchQuery{LabID: types.NoLab}, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, pageIDs(page))
}

func TestSearch_KeywordWithoutTermsMatchesNothing(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	for _, kw := range []string{"the", "!!!", "of the"} {
		t.Run(kw, func(t *testing.T) {
			q := types.SearchQuery{Keyword: kw, LabID: types.NoLab}
			require.True(t, q.Active())
			page, err := s.Search(ctx, q, 1, 4)
			require.NoError(t, err)
			assert.Zero(t, page.Total)
			assert.Empty(t, page.Items)
		})
	}

	page, err := s.Search(ctx, types.SearchQuery{Keyword: "proxy", LabID: types.NoLab}, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	page, err = s.Search(ctx, types.SearchQuery{LabID: 1}, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestSearch_FieldScoping(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	tests := []struct {
		name  string
		field types.Field
		want  []int64
	}{
		{"title only", types.FieldTitle, []int64{1, 5}},
		{"body only", types.FieldBody, []int64{2, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.Search(ctx, types.SearchQuery{Keyword: "proxy", LabID: types.NoLab, Field: tt.field}, 1, 10)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, pageIDs(page))
		})
	}

	page, err := s.Search(ctx, types.SearchQuery{Keyword: "proxy", LabID: types.NoLab}, 1, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2, 5}, pageIDs(page))
	assert.Equal(t, int64(5), page.Items[0].ID, "title and body matches rank first")
}

func TestSearch_LabFilterAndJapanese(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	page, err := s.Search(ctx, types.SearchQuery{Keyword: "proxy", LabID: 2}, 1, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 5}, pageIDs(page))

	page, err = s.Search(ctx, types.SearchQuery{LabID: 1}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, pageIDs(page))

	page, err = s.Search(ctx, types.SearchQuery{Keyword: "検索", LabID: types.NoLab}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, pageIDs(page))

	page, err = s.Search(ctx, types.SearchQuery{Keyword: "nothing-matches-this", LabID: types.NoLab}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)
}

func TestSearch_StableAcrossCalls(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	q := types.SearchQuery{Keyword: "caching", LabID: types.NoLab}
	first, err := s.Search(ctx, q, 1, 10)
	require.NoError(t, err)
	second, err := s.Search(ctx, q, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIndex_SnapshotPerGeneration(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	a, err := s.Index(ctx)
	require.NoError(t, err)
	b, err := s.Index(ctx)
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = s.Put(ctx, types.Thesis{Title: "new", Body: "fresh text"}, "")
	require.NoError(t, err)
	c, err := s.Index(ctx)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 6, c.Len())

	require.NoError(t, s.RecordAccess(ctx, 1))
	d, err := s.Index(ctx)
	require.NoError(t, err)
	assert.Same(t, c, d, "access counts do not invalidate the index")
}

func TestPopularAndAccess(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, s.RecordAccess(ctx, 4))
	}
	require.NoError(t, s.RecordAccess(ctx, 2))
	assert.ErrorIs(t, s.RecordAccess(ctx, 99), ErrNotFound)

	popular, err := s.Popular(ctx, 0)
	require.NoError(t, err)
	require.Len(t, popular, 5)
	assert.Equal(t, int64(4), popular[0].ID)
	assert.Equal(t, int64(3), popular[0].Access)
	assert.Equal(t, int64(2), popular[1].ID)
	assert.Equal(t, int64(1), popular[2].ID)
}

func TestImport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	files := map[string]string{
		"a.yaml":       "title: Proxy caching\nbody: caching proxy\npath: sumi/thesis2016/a.pdf\n",
		"b.yaml":       "title: Index page\nbody: x\npath: sumi/index.html\n",
		"c.yml":        "title: Slides\nbody: y\npath: durst/slides/c.pdf\n",
		"d.yaml":       "title: No body\npath: durst/thesis/d.pdf\n",
		"e.yaml":       "title: Explicit lab\nbody: z\nlab: harada\n",
		"notes.txt":    "ignored",
		"sub/f.yaml":   "title: Nested\nbody: w\npath: tobe/postgrad/f.pdf\n",
		"broken.yaml":  "title: [unterminated\n",
		"unknown.yaml": "title: t\nbody: b\nlab: nobody\n",
	}
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	directory, err := labs.NewDirectory(types.DefaultLabs())
	require.NoError(t, err)

	var buf bytes.Buffer
	summary, err := s.Import(ctx, dir, directory, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Imported)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 3, summary.Failed)
	assert.Equal(t, 8, summary.Total())
	assert.Contains(t, buf.String(), "imported: 3, skipped: 2, failed: 3")

	labsStored, err := s.Labs(ctx)
	require.NoError(t, err)
	assert.Len(t, labsStored, 8)

	sumi, err := s.ThesesByLab(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sumi, 1)
	assert.Equal(t, "Proxy caching", sumi[0].Title)

	harada, err := s.ThesesByLab(ctx, 7)
	require.NoError(t, err)
	require.Len(t, harada, 1)
	assert.Equal(t, "Explicit lab", harada[0].Title)
}

func TestExport(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf, FormatJSON))

	var records []Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 5)
	assert.Equal(t, "sumi", records[0].Lab)
	assert.Equal(t, "durst", records[1].Lab)

	buf.Reset()
	require.NoError(t, s.Export(ctx, &buf, FormatYAML))
	assert.Contains(t, buf.String(), "title: Proxy caching")

	assert.Error(t, s.Export(ctx, &buf, "csv"))
}
