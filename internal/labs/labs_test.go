package labs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labthesis/thesis-engine/pkg/types"
)

func TestResolve(t *testing.T) {
	d, err := NewDirectory(types.DefaultLabs())
	require.NoError(t, err)

	tests := []struct {
		path     string
		wantSlug string
		wantRel  string
		wantOK   bool
	}{
		{"durst/thesis2016/a.pdf", "durst", "thesis2016/a.pdf", true},
		{"archive/harada/abs/x.pdf", "harada", "abs/x.pdf", true},
		{"sumi\\thesis\\b.pdf", "sumi", "thesis/b.pdf", true},
		{"unknown/thesis.pdf", "", "", false},
		// First match wins when a path names two labs.
		{"durst/sumi/thesis.pdf", "durst", "sumi/thesis.pdf", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			lab, rel, ok := d.Resolve(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantSlug, lab.Slug)
			assert.Equal(t, tt.wantRel, rel)
		})
	}
}

func TestNewDirectory_Errors(t *testing.T) {
	tests := []struct {
		name  string
		table []types.LabEntry
	}{
		{"missing slug", []types.LabEntry{{ID: 1}}},
		{"duplicate id", []types.LabEntry{{ID: 1, Slug: "a"}, {ID: 1, Slug: "b"}}},
		{"duplicate slug", []types.LabEntry{{ID: 1, Slug: "a"}, {ID: 2, Slug: "a"}}},
		{"bad pattern", []types.LabEntry{{ID: 1, Slug: "a", Patterns: []string{"("}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDirectory(tt.table)
			assert.Error(t, err)
		})
	}
}

func TestLookups(t *testing.T) {
	d, err := NewDirectory(types.DefaultLabs())
	require.NoError(t, err)

	lab, ok := d.ByID(7)
	require.True(t, ok)
	assert.Equal(t, "harada", lab.Slug)

	lab, ok = d.BySlug("sumi")
	require.True(t, ok)
	assert.Equal(t, int64(1), lab.ID)

	_, ok = d.ByID(types.NoLab)
	assert.False(t, ok)
	assert.Len(t, d.Labs(), 8)
}

func TestIsThesisPath(t *testing.T) {
	tests := []struct {
		rel  string
		want bool
	}{
		{"thesis2016/a.pdf", true},
		{"papers/report_T.pdf", true},
		{"papers/report_t.pdf", true},
		{"abs/2016/a.pdf", true},
		{"abs/2016/aE.pdf", false},
		{"abstract/undergraduate/2016.html", true},
		{"2016/postgrad/a.pdf", true},
		{"undrgrad/a.pdf", true},
		{"slides/a.pdf", false},
		{"index.html", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsThesisPath(tt.rel), tt.rel)
	}
}

func TestIsIndexPath(t *testing.T) {
	assert.True(t, IsIndexPath("durst/index.html"))
	assert.True(t, IsIndexPath("index.htm"))
	assert.False(t, IsIndexPath("durst/thesis.html"))
}
