package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		page, size           int
		wantOffset, wantSize int
	}{
		{page: 1, size: 10, wantOffset: 0, wantSize: 10},
		{page: 3, size: 20, wantOffset: 40, wantSize: 20},
		{page: 0, size: 5, wantOffset: 0, wantSize: 5},
		{page: 2, size: 0, wantOffset: DefaultPageSize, wantSize: DefaultPageSize},
		{page: 1, size: MaxPageSize + 1, wantOffset: 0, wantSize: DefaultPageSize},
	}
	for _, tt := range tests {
		offset, size := Calculate(tt.page, tt.size)
		assert.Equal(t, tt.wantOffset, offset, "page=%d size=%d", tt.page, tt.size)
		assert.Equal(t, tt.wantSize, size, "page=%d size=%d", tt.page, tt.size)
	}
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("abc", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}

func TestTotalPages(t *testing.T) {
	assert.EqualValues(t, 0, TotalPages(0, 10))
	assert.EqualValues(t, 1, TotalPages(10, 10))
	assert.EqualValues(t, 2, TotalPages(11, 10))
	assert.EqualValues(t, 0, TotalPages(5, 0))
}
