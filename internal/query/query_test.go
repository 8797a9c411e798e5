package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int {
	return &i
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		expected    Query
		expectedErr error
	}{
		{name: "empty string", input: "", expected: Query{}},
		{name: "plain search", input: "postgres", expected: Query{Search: "postgres"}},
		{name: "plain search with spaces", input: "  libre office ", expected: Query{Search: "  libre office "}},
		{name: "brace inside plain text", input: "a{b}", expected: Query{Search: "a{b}"}},
		{
			name:     "structured token with reference",
			input:    `{"search":"pg","referenceId":12}`,
			expected: Query{Search: "pg", ReferenceID: intPtr(12)},
		},
		{
			name:     "structured token without reference",
			input:    `{"search":"postgres"}`,
			expected: Query{Search: "postgres"},
		},
		{name: "malformed structured token", input: `{"search":`, expectedErr: ErrMalformedQuery},
		{name: "wrong field type", input: `{"referenceId":"twelve"}`, expectedErr: ErrMalformedQuery},
		{name: "unknown field", input: `{"softwareName":"x"}`, expectedErr: ErrMalformedQuery},
		{name: "trailing data", input: `{"search":"x"}{}`, expectedErr: ErrMalformedQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q, err := Parse(tt.input)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, Equivalent(tt.expected, q), "expected %+v, got %+v", tt.expected, q)
		})
	}
}

func TestSerialize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    Query
		expected string
	}{
		{name: "empty query", query: Query{}, expected: ""},
		{name: "search only", query: Query{Search: "postgres"}, expected: `{"search":"postgres"}`},
		{name: "reference drops id", query: Query{Search: "pg", ReferenceID: intPtr(12)}, expected: "pg"},
		{name: "reference only", query: Query{ReferenceID: intPtr(12)}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Serialize(tt.query))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	queries := []Query{
		{},
		{Search: "postgres"},
		{Search: "{not a token"},
		{Search: "Éléments de calcul"},
		{Search: `quote " and backslash \`},
	}

	for _, q := range queries {
		t.Run(q.Search, func(t *testing.T) {
			t.Parallel()

			parsed, err := Parse(Serialize(q))
			require.NoError(t, err)
			assert.True(t, Equivalent(q, parsed), "expected %+v, got %+v", q, parsed)
		})
	}
}

func TestRoundTripDropsReference(t *testing.T) {
	t.Parallel()

	q := Query{Search: "pg", ReferenceID: intPtr(7)}
	parsed, err := Parse(Serialize(q))
	require.NoError(t, err)

	assert.Equal(t, "pg", parsed.Search)
	assert.Nil(t, parsed.ReferenceID)
	assert.False(t, Equivalent(q, parsed))
}

func TestSameReference(t *testing.T) {
	t.Parallel()

	assert.True(t, SameReference(nil, nil))
	assert.True(t, SameReference(intPtr(3), intPtr(3)))
	assert.False(t, SameReference(intPtr(3), nil))
	assert.False(t, SameReference(intPtr(3), intPtr(4)))
}
