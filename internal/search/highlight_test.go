package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"PostgreSQL", "postgresql"},
		{"Éole", "eole"},
		{"Ça marche", "ca marche"},
		{"naïve", "naive"},
		{"Œuvre", "oeuvre"},
		{"e\u0301cole", "ecole"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Fold(tt.input))
		})
	}
}

func TestTerms(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"libre", "office"}, Terms("  Libre   Office "))
	assert.Empty(t, Terms("   "))
	assert.Equal(t, []string{"open", "source"}, Terms("Open-Source"))
	assert.Equal(t, []string{"notepad"}, Terms("notepad++"))
	assert.Equal(t, []string{"oeuvre"}, Terms("œuvre"))
	assert.Equal(t, []string{"sql"}, Terms("sql SQL"))
}

func TestMeetsMinLength(t *testing.T) {
	t.Parallel()

	assert.False(t, MeetsMinLength("po", DefaultMinQueryLength))
	assert.True(t, MeetsMinLength("pos", DefaultMinQueryLength))
	assert.True(t, MeetsMinLength("éol", DefaultMinQueryLength))
}

func TestPositions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		terms    []string
		expected []int
	}{
		{
			name:     "prefix of name",
			text:     "PostgreSQL",
			terms:    []string{"postgres"},
			expected: []int{0, 1, 2, 3, 4, 5, 6, 7},
		},
		{
			name:     "accented name",
			text:     "Éole",
			terms:    []string{"eol"},
			expected: []int{0, 1, 2},
		},
		{
			name:     "several terms and occurrences",
			text:     "Libre Office libre",
			terms:    []string{"libre", "off"},
			expected: []int{0, 1, 2, 3, 4, 6, 7, 8, 13, 14, 15, 16, 17},
		},
		{
			name:     "ligature folds to two runes",
			text:     "Œuvre Manager",
			terms:    []string{"oeuv"},
			expected: []int{0, 1, 2, 3},
		},
		{
			name:     "no occurrence",
			text:     "pgAdmin",
			terms:    []string{"postgres"},
			expected: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Positions(tt.text, tt.terms))
		})
	}
}
