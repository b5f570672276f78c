package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Page
		want Page
	}{
		{"zero values", Page{}, Page{PageNum: 1, Limit: 10}},
		{"negative", Page{PageNum: -2, Limit: -5}, Page{PageNum: 1, Limit: 10}},
		{"valid untouched", Page{PageNum: 3, Limit: 25}, Page{PageNum: 3, Limit: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, Page{PageNum: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, Page{PageNum: 3, Limit: 10}.Offset())
}

func TestNewPageMeta(t *testing.T) {
	meta := NewPageMeta(21, Page{PageNum: 2, Limit: 10})
	assert.Equal(t, 21, meta.TotalItems)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 10, meta.Limit)

	// An exact multiple does not round up an extra page.
	assert.Equal(t, 2, NewPageMeta(20, Page{PageNum: 1, Limit: 10}).TotalPages)

	// No items means no pages.
	assert.Equal(t, 0, NewPageMeta(0, Page{PageNum: 1, Limit: 10}).TotalPages)
}
