package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		page       string
		limit      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", "", 1, DefaultLimit, 0},
		{"third page", "3", "20", 3, 20, 40},
		{"garbage", "x", "-4", 1, DefaultLimit, 0},
		{"capped", "1", "1000", 1, MaxLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantOffset, p.Offset)
		})
	}
}

func TestMeta(t *testing.T) {
	p := New("2", "10")

	assert.Equal(t, Meta{CurrentPage: 2, TotalPages: 3, TotalItems: 25, Limit: 10}, p.Meta(25))
	assert.Equal(t, 1, p.Meta(0).TotalPages)
	assert.Equal(t, 2, p.Meta(20).TotalPages)
}
