package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/featreg/internal/core/domain"
)

func TestSortVersions(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "numeric suffix is not lexicographic",
			input:    []string{"v2", "v1", "v10"},
			expected: []string{"v1", "v2", "v10"},
		},
		{
			name:     "dotted versions before major labels",
			input:    []string{"v1", "0.1.1", "0.1.0"},
			expected: []string{"0.1.0", "0.1.1", "v1"},
		},
		{
			name:     "invalid labels sort first and by byte order",
			input:    []string{"v3", "beta", "alpha"},
			expected: []string{"alpha", "beta", "v3"},
		},
		{
			name:     "equivalent spellings keep a total order",
			input:    []string{"v1.0.0", "1", "v1"},
			expected: []string{"1", "v1", "v1.0.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]string(nil), tt.input...)
			domain.SortVersions(got)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCompareVersions(t *testing.T) {
	assert.Negative(t, domain.CompareVersions("v9", "v10"))
	assert.Positive(t, domain.CompareVersions("V2", "v1"))
	assert.Zero(t, domain.CompareVersions("v2", "v2"))
}
