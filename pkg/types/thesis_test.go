package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name                   string
		total, page, pageSize  int
		wantStart, wantEnd, wp int
	}{
		{"first page", 10, 1, 4, 0, 4, 1},
		{"last partial page", 10, 3, 4, 8, 10, 3},
		{"past the end", 10, 4, 4, 10, 10, 4},
		{"page below one", 10, -2, 4, 0, 4, 1},
		{"zero page size", 3, 2, 0, 1, 2, 2},
		{"empty listing", 0, 1, 4, 0, 0, 1},
		{"max int page", 2, math.MaxInt, 4, 2, 2, math.MaxInt},
		{"max int page size", 5, 2, math.MaxInt, 5, 5, 2},
		{"max int page and size", 5, math.MaxInt, math.MaxInt, 5, 5, math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, page := Paginate(tt.total, tt.page, tt.pageSize)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
			assert.Equal(t, tt.wp, page)
			assert.True(t, 0 <= start && start <= end && end <= tt.total)
		})
	}
}
