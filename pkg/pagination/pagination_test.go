package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		in        PaginationParams
		wantPage  int
		wantLimit int
	}{
		{"zero values", PaginationParams{}, 1, DefaultLimit},
		{"negative page", PaginationParams{Page: -3, Limit: 10}, 1, 10},
		{"limit capped", PaginationParams{Page: 2, Limit: 500}, 2, MaxLimit},
		{"valid", PaginationParams{Page: 4, Limit: 25}, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Validate()
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 35)

	assert.Equal(t, 4, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	last := NewPagination(4, 10, 35)
	assert.False(t, last.HasNext)
}

func TestWindow(t *testing.T) {
	p := PaginationParams{Page: 3, Limit: 4}

	start, end := p.Window(10)
	assert.Equal(t, 8, start)
	assert.Equal(t, 10, end)

	start, end = p.Window(5)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}

func TestNewPaginatedResultNeverNil(t *testing.T) {
	res := NewPaginatedResult[int](nil, NewPagination(1, 10, 0))
	assert.NotNil(t, res.Items)
	assert.Len(t, res.Items, 0)
}
