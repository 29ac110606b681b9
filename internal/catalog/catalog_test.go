package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labthesis/thesis-engine/internal/corpus"
	"github.com/labthesis/thesis-engine/internal/recommend"
	"github.com/labthesis/thesis-engine/pkg/types"
)

type fakeCorpus struct {
	theses    map[int64]types.Thesis
	labs      []types.Lab
	searchErr error

	lastQuery   types.SearchQuery
	lastPage    int
	defaultUsed bool
	accessed    []int64
}

func newFakeCorpus() *fakeCorpus {
	return &fakeCorpus{
		theses: map[int64]types.Thesis{
			1: {ID: 1, Title: "Ruby parser", Body: "parser", LabID: 2, Access: 3},
			2: {ID: 2, Title: "Go runtime", Body: "scheduler", LabID: 4},
		},
		labs: []types.Lab{{ID: 2, Name: "Dürst", Slug: "durst"}, {ID: 4, Name: "Ohara", Slug: "ohara"}},
	}
}

func (f *fakeCorpus) Search(_ context.Context, q types.SearchQuery, page, pageSize int) (types.Page, error) {
	f.lastQuery = q
	f.lastPage = page
	if f.searchErr != nil {
		return types.Page{}, f.searchErr
	}
	if q.Keyword == "missing" {
		return types.Page{Items: []types.ScoredThesis{}, Page: page, PageSize: pageSize}, nil
	}
	return types.Page{
		Items:    []types.ScoredThesis{{Thesis: f.theses[1], Score: 1}},
		Page:     page,
		PageSize: pageSize,
		Total:    1,
	}, nil
}

func (f *fakeCorpus) Default(_ context.Context, page, pageSize int) (types.Page, error) {
	f.defaultUsed = true
	f.lastPage = page
	return types.Page{
		Items:    []types.ScoredThesis{{Thesis: f.theses[1]}, {Thesis: f.theses[2]}},
		Page:     page,
		PageSize: pageSize,
		Total:    2,
	}, nil
}

func (f *fakeCorpus) Get(_ context.Context, id int64) (types.Thesis, error) {
	t, ok := f.theses[id]
	if !ok {
		return types.Thesis{}, corpus.ErrNotFound
	}
	return t, nil
}

func (f *fakeCorpus) RecordAccess(_ context.Context, id int64) error {
	f.accessed = append(f.accessed, id)
	return nil
}

func (f *fakeCorpus) Popular(_ context.Context, n int) ([]types.Thesis, error) {
	return []types.Thesis{f.theses[1], f.theses[2]}[:min(n, 2)], nil
}

func (f *fakeCorpus) Labs(context.Context) ([]types.Lab, error) {
	return f.labs, nil
}

type fakeRecommender struct {
	err error
}

func (r fakeRecommender) MoreLikeThis(_ context.Context, id int64, page, pageSize int) (types.Page, error) {
	if r.err != nil {
		return types.Page{}, r.err
	}
	return types.Page{
		Items:    []types.ScoredThesis{{Thesis: types.Thesis{ID: id + 1}, Score: 0.5}},
		Page:     page,
		PageSize: pageSize,
		Total:    1,
	}, nil
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-3", 1},
		{"2", 2},
		{" 7 ", 7},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePage(tt.in))
		})
	}
}

func TestSearch_ParsesParams(t *testing.T) {
	c := newFakeCorpus()
	s := New(c, fakeRecommender{}, WithPageSize(4))

	v := s.Search(context.Background(), Params{Keyword: " parser ", Lab: "2", Field: "title", Page: "3"})

	assert.Equal(t, types.SearchQuery{Keyword: "parser", LabID: 2, Field: types.FieldTitle}, c.lastQuery)
	assert.Equal(t, 3, c.lastPage)
	assert.Empty(t, v.Notices)
	assert.Equal(t, 1, v.Results.Total)
	assert.Len(t, v.Labs, 2)
	assert.Len(t, v.Popular, 2)
}

func TestSearch_LabWithoutFilter(t *testing.T) {
	tests := []struct {
		name string
		lab  string
	}{
		{"missing", ""},
		{"malformed", "x1"},
		{"sentinel", "-1"},
		{"unknown", "99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFakeCorpus()
			v := New(c, nil).Search(context.Background(), Params{Keyword: "parser", Lab: tt.lab})
			assert.Equal(t, types.NoLab, c.lastQuery.LabID)
			assert.Empty(t, v.Notices)
		})
	}
}

func TestSearch_InvalidFieldFallsBackToDefault(t *testing.T) {
	c := newFakeCorpus()
	v := New(c, nil).Search(context.Background(), Params{Keyword: "parser", Field: "abstract"})

	assert.True(t, c.defaultUsed)
	require.Len(t, v.Notices, 1)
	assert.Contains(t, v.Notices[0], "invalid field")
	assert.Equal(t, 2, v.Results.Total)
	assert.False(t, v.Query.Active())
}

func TestSearch_NoMatchNotice(t *testing.T) {
	c := newFakeCorpus()
	v := New(c, nil).Search(context.Background(), Params{Keyword: "missing"})

	assert.Equal(t, []string{NoticeNoMatch}, v.Notices)
	assert.NotNil(t, v.Results.Items)
}

func TestSearch_StorageErrorGivesEmptyView(t *testing.T) {
	c := newFakeCorpus()
	c.searchErr = errors.New("disk I/O error")
	v := New(c, nil).Search(context.Background(), Params{Keyword: "parser", Page: "2"})

	assert.Equal(t, []string{NoticeUnavailable}, v.Notices)
	assert.Empty(t, v.Results.Items)
	assert.Equal(t, 2, v.Results.Page)
}

func TestShow(t *testing.T) {
	c := newFakeCorpus()
	v := New(c, fakeRecommender{}).Show(context.Background(), "1", "2")

	require.NotNil(t, v.Thesis)
	assert.Equal(t, int64(1), v.Thesis.ID)
	assert.Equal(t, int64(4), v.Thesis.Access)
	assert.Equal(t, []int64{1}, c.accessed)
	assert.Equal(t, 2, v.Results.Page)
	require.Len(t, v.Results.Items, 1)
	assert.Equal(t, int64(2), v.Results.Items[0].ID)
}

func TestShow_NotFound(t *testing.T) {
	for _, id := range []string{"", "abc", "42"} {
		t.Run(id, func(t *testing.T) {
			c := newFakeCorpus()
			v := New(c, fakeRecommender{}).Show(context.Background(), id, "")
			assert.Nil(t, v.Thesis)
			assert.Equal(t, []string{NoticeNotFound}, v.Notices)
			assert.Empty(t, c.accessed)
		})
	}
}

func TestRecommend_DoesNotCountAccess(t *testing.T) {
	c := newFakeCorpus()
	v := New(c, fakeRecommender{}).Recommend(context.Background(), "2", "1")

	require.NotNil(t, v.Thesis)
	assert.Empty(t, c.accessed)
	assert.Equal(t, 1, v.Results.Total)
}

func TestRecommend_EngineError(t *testing.T) {
	c := newFakeCorpus()
	v := New(c, fakeRecommender{err: errors.New("index unavailable")}).Recommend(context.Background(), "1", "")

	assert.Equal(t, []string{NoticeUnavailable}, v.Notices)
	assert.Empty(t, v.Results.Items)
}

func TestPopular(t *testing.T) {
	v := New(newFakeCorpus(), nil, WithPopularCount(1)).Popular(context.Background())
	require.Len(t, v.Popular, 1)
	assert.Equal(t, int64(1), v.Popular[0].ID)
}

func TestHugePageNumber(t *testing.T) {
	ctx := context.Background()
	store, err := corpus.NewStore(types.CorpusConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.SyncLabs(ctx, []types.Lab{{ID: 1, Name: "Sumi", Slug: "sumi"}}))
	for _, th := range []types.Thesis{
		{Title: "Proxy caching", Body: "A caching proxy for web clients.", LabID: 1},
		{Title: "Proxy design", Body: "Designing a proxy server.", LabID: 1},
	} {
		_, err := store.Put(ctx, th, "")
		require.NoError(t, err)
	}

	svc := New(store, recommend.New(store))
	const huge = "9223372036854775807"

	for _, p := range []Params{
		{Keyword: "proxy", Page: huge},
		{Page: huge},
	} {
		v := svc.Search(ctx, p)
		assert.Empty(t, v.Results.Items)
		assert.Equal(t, 2, v.Results.Total)
		assert.Empty(t, v.Notices)
	}

	v := svc.Show(ctx, "1", huge)
	require.NotNil(t, v.Thesis)
	assert.Empty(t, v.Results.Items)
	assert.Empty(t, v.Notices)

	v = svc.Recommend(ctx, "1", huge)
	assert.Empty(t, v.Results.Items)
	assert.Empty(t, v.Notices)
}
